package transport

import (
	"context"
	"fmt"

	"github.com/mcncl/gloss/internal/decoder"
	"github.com/mcncl/gloss/internal/errors"
	"github.com/mcncl/gloss/internal/logging"
	"github.com/mcncl/gloss/internal/models"
)

// Fetch performs req and decodes the body as a single object.
func Fetch[T any](ctx context.Context, c *Client, req Request, decode decoder.DecodeFunc[T]) (T, error) {
	var zero T
	ir, err := fetchBody(ctx, c, req)
	if err != nil {
		return zero, err
	}
	obj, ok := ir.Object()
	if !ok {
		return zero, errors.NewDecodeError(fmt.Sprintf("response from %s is not an object", req.URL), errors.ErrNotObject)
	}
	v, ok := decode(obj)
	if !ok {
		c.logger.Debug("decode failed", logFields(req))
		return zero, errors.NewDecodeError(fmt.Sprintf("response from %s", req.URL), errors.ErrDecodeFailed)
	}
	return v, nil
}

// FetchAll performs req and decodes the body as an array of objects. One
// element that fails to decode fails the whole call.
func FetchAll[T any](ctx context.Context, c *Client, req Request, decode decoder.DecodeFunc[T]) ([]T, error) {
	ir, err := fetchBody(ctx, c, req)
	if err != nil {
		return nil, err
	}
	if _, ok := ir.Array(); !ok {
		return nil, errors.NewDecodeError(fmt.Sprintf("response from %s is not an array", req.URL), errors.ErrNotArray)
	}
	out, ok := decoder.ModelsFrom(ir.Root, decode)
	if !ok {
		c.logger.Debug("decode failed", logFields(req))
		return nil, errors.NewDecodeError(fmt.Sprintf("response from %s", req.URL), errors.ErrDecodeFailed)
	}
	return out, nil
}

// Go runs Fetch in a goroutine and delivers its outcome on the returned
// channel, which receives exactly one Result and is then closed.
func Go[T any](ctx context.Context, c *Client, req Request, decode decoder.DecodeFunc[T]) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := Fetch(ctx, c, req, decode)
		if err != nil {
			ch <- NewFailure[T](err)
			return
		}
		ch <- NewSuccess(v)
	}()
	return ch
}

// GoAll is the array form of Go.
func GoAll[T any](ctx context.Context, c *Client, req Request, decode decoder.DecodeFunc[T]) <-chan Result[[]T] {
	ch := make(chan Result[[]T], 1)
	go func() {
		defer close(ch)
		v, err := FetchAll(ctx, c, req, decode)
		if err != nil {
			ch <- NewFailure[[]T](err)
			return
		}
		ch <- NewSuccess(v)
	}()
	return ch
}

// IsTransportError reports whether err came from the network round trip.
func IsTransportError(err error) bool {
	return errors.IsType(err, errors.ErrorTypeTransport)
}

// IsDecodeError reports whether the response arrived but could not be
// turned into the requested model.
func IsDecodeError(err error) bool {
	return errors.IsType(err, errors.ErrorTypeDecode)
}

func fetchBody(ctx context.Context, c *Client, req Request) (models.IntermediateRepresentation, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	ir, err := resp.Parse()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewDecodeError(fmt.Sprintf("response from %s could not be parsed", req.URL), err)
	}
	return ir, nil
}

func logFields(req Request) logging.Fields {
	method := req.Method
	if method == "" {
		method = MethodGet
	}
	return logging.Fields{"method": method.String(), "url": req.URL}
}
