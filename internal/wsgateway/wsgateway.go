// Package wsgateway adapts a *replay.Subscription into a WebSocket
// connection: every delivered value is forwarded as a JSON text frame, and
// demand is granted in fixed chunks at a rate set by a rate.Limiter rather
// than requested unbounded up front. The refill rate does not depend on the
// connection's write latency.
package wsgateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/hashicorp/go-multicast-replay/replay"
)

// lowWaterMark is the demand Gateway requests on subscribe and again every
// time the limiter permits another burst, rather than requesting
// replay.unboundedDemand up front. Each refill adds to whatever demand is
// still outstanding; the total is not capped.
const lowWaterMark = 16

// Gateway is a replay.Subscriber[T] that writes every delivered value to a
// *websocket.Conn as JSON, refilling its own demand at a rate capped by
// limiter instead of all at once.
type Gateway[T any] struct {
	conn    *websocket.Conn
	limiter *rate.Limiter
	logger  hclog.Logger

	mu   sync.Mutex
	sub  *replay.Subscription[T]
	done chan struct{}
}

// New wraps conn as a replay.Subscriber[T]. limiter bounds how often the
// gateway refills its outstanding demand; a nil limiter defaults to one
// refill per 50ms, a conservative pace suitable for a single browser tab.
func New[T any](conn *websocket.Conn, limiter *rate.Limiter, logger hclog.Logger) *Gateway[T] {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(50*time.Millisecond), 1)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Gateway[T]{
		conn:    conn,
		limiter: limiter,
		logger:  logger.Named("wsgateway"),
		done:    make(chan struct{}),
	}
}

// OnSubscribe stores the handle and requests the first low-water-mark
// chunk of demand; subsequent refills happen from the pacing goroutine
// started here.
func (g *Gateway[T]) OnSubscribe(sub *replay.Subscription[T]) {
	g.mu.Lock()
	g.sub = sub
	g.mu.Unlock()

	sub.Request(lowWaterMark)
	go g.pace()
}

// pace refills demand by lowWaterMark every time the limiter grants a
// token, until the connection closes. This is the supplemented
// demand-pacing policy: spec.md's P4 only requires demand be honored, not
// that a caller decide a refill cadence, so this package supplies one.
func (g *Gateway[T]) pace() {
	for {
		select {
		case <-g.done:
			return
		default:
		}
		if err := g.limiter.Wait(waitContext(g.done)); err != nil {
			return
		}
		g.mu.Lock()
		sub := g.sub
		g.mu.Unlock()
		if sub == nil {
			return
		}
		sub.Request(lowWaterMark)
	}
}

func (g *Gateway[T]) OnNext(v T) {
	payload, err := json.Marshal(v)
	if err != nil {
		g.logger.Warn("dropping unmarshalable value", "error", err)
		return
	}
	if err := g.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		g.logger.Debug("write failed, cancelling subscription", "error", err)
		g.closeAndCancel()
	}
}

func (g *Gateway[T]) OnError(err error) {
	g.logger.Warn("upstream terminated with error", "error", err)
	g.closeConn(websocket.CloseInternalServerErr, err.Error())
	g.stop()
}

func (g *Gateway[T]) OnComplete() {
	g.closeConn(websocket.CloseNormalClosure, "")
	g.stop()
}

func (g *Gateway[T]) closeAndCancel() {
	g.mu.Lock()
	sub := g.sub
	g.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
	g.stop()
}

func (g *Gateway[T]) closeConn(code int, text string) {
	_ = g.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
	_ = g.conn.Close()
}

func (g *Gateway[T]) stop() {
	select {
	case <-g.done:
	default:
		close(g.done)
	}
}

// waitContext adapts a done channel to a context.Context good enough for
// rate.Limiter.Wait, without pulling in a full context.Context from the
// caller (this gateway has no request-scoped deadline of its own — its
// lifetime is the WebSocket connection's).
func waitContext(done <-chan struct{}) doneContext {
	return doneContext{done: done}
}

type doneContext struct{ done <-chan struct{} }

func (doneContext) Deadline() (time.Time, bool) { return time.Time{}, false }
func (d doneContext) Done() <-chan struct{}     { return d.done }
func (d doneContext) Err() error {
	select {
	case <-d.done:
		return errClosed
	default:
		return nil
	}
}
func (doneContext) Value(any) any { return nil }

var errClosed = &gatewayClosedError{}

type gatewayClosedError struct{}

func (*gatewayClosedError) Error() string { return "wsgateway: connection closed" }
