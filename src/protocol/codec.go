// Package protocol implements the line-oriented parameter protocol:
//
//	request:  GET <SYMBOL> [<YEARS>]\n
//	success:  <mu> <sigma> <S0>\n
//	failure:  ERROR <message>\n
//
// One request and one response per connection.
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"param-server/src/helpers"
	"param-server/src/models"
)

const (
	CommandGet   = "GET"
	ErrorPrefix  = "ERROR"
	DefaultYears = 5
	// MaxRequestBytes bounds a request line, newline included.
	MaxRequestBytes = 256
)

// -----------------------------------------------------------------------------

// RemoteError is an ERROR line received by a client.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "server error: " + e.Message
}

// -----------------------------------------------------------------------------

// ReadRequestLine reads until a newline, EOF or max bytes, whichever comes
// first. A line ended by EOF is accepted as long as it is not blank; a full
// buffer without a newline, or nothing at all, is a protocol error.
func ReadRequestLine(r io.Reader, max int) (string, error) {
	if max <= 0 {
		max = MaxRequestBytes
	}

	buf := make([]byte, max)
	n := 0
	for n < max {
		m, err := r.Read(buf[n:])
		if m > 0 {
			if i := bytes.IndexByte(buf[n:n+m], '\n'); i >= 0 {
				return string(buf[:n+i]), nil
			}
			n += m
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}

	if n == max {
		return "", helpers.NewProtocolError("request exceeds %d bytes", max)
	}
	if len(bytes.TrimSpace(buf[:n])) == 0 {
		return "", helpers.NewProtocolError("connection closed before a request")
	}
	return string(buf[:n]), nil
}

// -----------------------------------------------------------------------------

// DecodeRequest parses one request line. A missing years token means
// defaultYears (DefaultYears when <= 0). Tokens after the years are ignored.
func DecodeRequest(line string, defaultYears int) (models.MRequest, error) {
	if defaultYears <= 0 {
		defaultYears = DefaultYears
	}

	parts := strings.Fields(line)
	if len(parts) < 2 || !strings.EqualFold(parts[0], CommandGet) {
		return models.MRequest{}, helpers.NewProtocolError("expected GET <SYMBOL> [<YEARS>]")
	}
	symbol := strings.ToUpper(parts[1])
	if symbol == "" {
		return models.MRequest{}, helpers.NewProtocolError("empty symbol")
	}

	years := defaultYears
	if len(parts) >= 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return models.MRequest{}, helpers.NewProtocolError("years %q is not an integer", parts[2])
		}
		if n <= 0 {
			return models.MRequest{}, helpers.NewProtocolError("years must be positive, got %d", n)
		}
		years = n
	}

	return models.MRequest{Command: CommandGet, Symbol: symbol, Years: years}, nil
}

// -----------------------------------------------------------------------------

// EncodeRequest renders the line a client sends.
func EncodeRequest(symbol string, years int) string {
	if years <= 0 {
		return fmt.Sprintf("%s %s\n", CommandGet, strings.ToUpper(symbol))
	}
	return fmt.Sprintf("%s %s %d\n", CommandGet, strings.ToUpper(symbol), years)
}

// -----------------------------------------------------------------------------

// FormatFloat renders v in the shortest form that parses back to v, with a
// '.' decimal point whatever the locale.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// -----------------------------------------------------------------------------

// EncodeParameters renders a success line.
func EncodeParameters(p models.MParameters) string {
	return FormatFloat(p.Mu) + " " + FormatFloat(p.Sigma) + " " + FormatFloat(p.S0) + "\n"
}

// -----------------------------------------------------------------------------

// EncodeError renders a failure line. Protocol errors always read
// "ERROR bad request"; line breaks inside messages are flattened.
func EncodeError(err error) string {
	msg := helpers.WireMessage(err)
	msg = strings.Join(strings.Fields(msg), " ")
	if msg == "" {
		msg = "internal error"
	}
	return ErrorPrefix + " " + msg + "\n"
}

// -----------------------------------------------------------------------------

// DecodeResponse parses a response line on the client side.
func DecodeResponse(line string) (models.MParameters, error) {
	line = strings.TrimSpace(line)
	if line == ErrorPrefix || strings.HasPrefix(line, ErrorPrefix+" ") {
		return models.MParameters{}, &RemoteError{Message: strings.TrimSpace(strings.TrimPrefix(line, ErrorPrefix))}
	}

	parts := strings.Fields(line)
	if len(parts) != 3 {
		return models.MParameters{}, fmt.Errorf("bad server reply %q", line)
	}

	vals := make([]float64, 3)
	for i, s := range parts {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.MParameters{}, fmt.Errorf("bad server reply %q: %w", line, err)
		}
		vals[i] = v
	}
	return models.MParameters{Mu: vals[0], Sigma: vals[1], S0: vals[2]}, nil
}
