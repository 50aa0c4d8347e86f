package listener

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"param-server/src/helpers"
	"param-server/src/models"
	"param-server/src/protocol"

	"github.com/google/uuid"
)

const writeWait = 5 * time.Second

// -----------------------------------------------------------------------------

// handleConnection serves exactly one request and always closes conn.
func (l *ParamListener) handleConnection(ctx context.Context, conn net.Conn) {
	start := time.Now()
	connID := uuid.NewString()[:8]
	log := l.Logger.With("conn", connID, "peer", conn.RemoteAddr().String())

	l.Metrics.ConnectionOpened()
	defer l.Metrics.ConnectionClosed()
	defer conn.Close()

	req, params, err := l.exchange(ctx, conn)

	var reply string
	if err != nil {
		reply = protocol.EncodeError(err)
		log.Info("error: %v", err)
	} else {
		reply = protocol.EncodeParameters(params)
		log.Info("served %s mu=%s sigma=%s S0=%s", req.Symbol,
			protocol.FormatFloat(params.Mu), protocol.FormatFloat(params.Sigma), protocol.FormatFloat(params.S0))
	}

	if werr := send(conn, reply); werr != nil {
		log.Warning("%v", werr)
	}

	l.Metrics.ObserveRequest("tcp", err)
	l.publish(connID, req, params, err, start)
}

// -----------------------------------------------------------------------------

// exchange reads, decodes and estimates. Panics below it become errors.
func (l *ParamListener) exchange(ctx context.Context, conn net.Conn) (req models.MRequest, params models.MParameters, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if t := time.Duration(l.Config.ReadTimeoutSeconds) * time.Second; t > 0 {
		conn.SetReadDeadline(time.Now().Add(t))
	}

	line, err := protocol.ReadRequestLine(conn, l.Config.ReadBufferBytes)
	if err != nil {
		return req, params, classifyReadError(err)
	}
	conn.SetReadDeadline(time.Time{})

	req, err = protocol.DecodeRequest(line, l.Config.DefaultYears)
	if err != nil {
		return req, params, err
	}

	params, err = l.Estimator.Estimate(ctx, req.Symbol, req.Years)
	return req, params, err
}

// -----------------------------------------------------------------------------

func classifyReadError(err error) error {
	switch {
	case helpers.IsProtocolError(err):
		return err
	case helpers.IsTimeout(err):
		return helpers.NewTimeoutError("receive", os.ErrDeadlineExceeded)
	default:
		// reset or half-read peer
		return helpers.NewProtocolError("read failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

// send is best effort; the error is for the local log only.
func send(conn net.Conn, reply string) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if _, err := io.WriteString(conn, reply); err != nil {
		return helpers.NewTransportError("send response", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (l *ParamListener) publish(connID string, req models.MRequest, params models.MParameters, err error, start time.Time) {
	if l.Events == nil {
		return
	}

	event := models.MServedEvent{
		ConnID:    connID,
		Symbol:    req.Symbol,
		Years:     req.Years,
		Outcome:   helpers.Category(err),
		Timestamp: time.Now().Unix(),
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		event.Error = helpers.WireMessage(err)
	} else {
		p := params
		event.Params = &p
	}
	l.Events.Publish(event)
}
