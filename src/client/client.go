package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"param-server/src/models"
	"param-server/src/protocol"
)

// ParamClient asks a parameter server for one symbol per connection.
type ParamClient struct {
	Address string
	Timeout time.Duration
	Dialer  net.Dialer
}

// -----------------------------------------------------------------------------

func NewParamClient(address string, timeout time.Duration) *ParamClient {
	return &ParamClient{Address: address, Timeout: timeout}
}

// -----------------------------------------------------------------------------

// Get sends one request and decodes the reply. years <= 0 lets the server
// pick its default. An ERROR reply is returned as *protocol.RemoteError.
func (c *ParamClient) Get(ctx context.Context, symbol string, years int) (models.MParameters, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	conn, err := c.Dialer.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return models.MParameters{}, fmt.Errorf("dial %s: %w", c.Address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := io.WriteString(conn, protocol.EncodeRequest(symbol, years)); err != nil {
		return models.MParameters{}, fmt.Errorf("send request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if ctx.Err() != nil {
			return models.MParameters{}, ctx.Err()
		}
		return models.MParameters{}, fmt.Errorf("read reply: %w", err)
	}

	return protocol.DecodeResponse(line)
}
