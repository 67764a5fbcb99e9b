package server

import (
	"github.com/cocosip/jpeg2000-jpip/internal/errs"
	"github.com/cocosip/jpeg2000-jpip/jpip/bandwidth"
	"github.com/cocosip/jpeg2000-jpip/jpip/session"
)

// Response is the outcome of dispatching one Request.
type Response struct {
	StatusCode int
	Session    *session.Session
	CnewHeader string // "cid=<id>,..." echoed as JPIP-cnew when a session was just created
	Err        error
}

// Dispatcher ties the image registry, session registry, bandwidth
// throttle, and request queue into the four-step flow of spec.md §4.16.
type Dispatcher struct {
	Images   *ImageRegistry
	Sessions *session.Registry
	Throttle *bandwidth.Throttle
	Queue    *RequestQueue
	Metrics  *Metrics
}

// Dispatch resolves/creates a session, validates the target image,
// applies the bandwidth throttle, and returns a Response. clientID
// keys the per-client throttle bucket.
func (d *Dispatcher) Dispatch(req Request, clientID string, estimatedBytes int) Response {
	var session *session.Session

	if req.Cnew {
		s, err := d.Sessions.Create(req.Target)
		if err != nil {
			return Response{StatusCode: 500, Err: err}
		}
		session = s
		if d.Metrics != nil {
			d.Metrics.SessionsActive.Inc()
		}
	} else {
		s, err := d.Sessions.Resolve(req.ChannelID)
		if err != nil {
			switch {
			case isKind(err, errs.ChannelIDUnknown):
				return Response{StatusCode: 400, Err: err}
			case isKind(err, errs.SessionClosed):
				return Response{StatusCode: 400, Err: err}
			default:
				return Response{StatusCode: 500, Err: err}
			}
		}
		session = s
	}

	if _, ok := d.Images.Lookup(req.Target); !ok {
		return Response{StatusCode: 404, Session: session, Err: errImageMissing}
	}

	if d.Throttle != nil && !d.Throttle.CanSend(clientID, estimatedBytes) {
		if d.Metrics != nil {
			d.Metrics.ThrottleRejections.Inc()
		}
		return Response{
			StatusCode: 503,
			Session:    session,
			Err:        errs.NewJPIP(errs.BandwidthExceeded, session.ID, req.Target, errBandwidthExceeded),
		}
	}
	if d.Throttle != nil {
		d.Throttle.RecordSent(clientID, estimatedBytes)
	}

	resp := Response{StatusCode: 200, Session: session}
	if req.Cnew {
		resp.CnewHeader = "cid=" + session.ChannelID
	}
	return resp
}

func isKind(err error, kind errs.Kind) bool {
	jerr, ok := err.(*errs.JPIPError)
	return ok && jerr.Kind == kind
}
