package transport

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	dialInitialInterval = 200 * time.Millisecond
	dialMaxInterval     = 5 * time.Second
	dialMaxElapsedTime  = time.Minute
)

type Listener struct {
	listener manet.Listener
}

func Listen(address string) (*Listener, error) {
	maddr, err := multiaddr.NewMultiaddr(address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse listen address")
	}

	listener, err := manet.Listen(maddr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to listen")
	}

	return &Listener{listener: listener}, nil
}

func (l *Listener) Accept() (Connection, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewStreamConnection(conn), nil
}

// Address returns the bound multiaddr, with the real port when 0 was requested.
func (l *Listener) Address() string {
	return l.listener.Multiaddr().String()
}

func (l *Listener) Close() error {
	return l.listener.Close()
}

func Dial(ctx context.Context, address string) (Connection, error) {
	maddr, err := multiaddr.NewMultiaddr(address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse dial address")
	}

	var dialer manet.Dialer
	conn, err := dialer.DialContext(ctx, maddr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", address)
	}

	return NewStreamConnection(conn), nil
}

// DialWithRetry retries Dial with exponential backoff until it succeeds,
// the address turns out to be invalid or ctx is done.
func DialWithRetry(ctx context.Context, address string, logger *zap.Logger) (Connection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := multiaddr.NewMultiaddr(address); err != nil {
		return nil, errors.Wrap(err, "failed to parse dial address")
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = dialInitialInterval
	policy.MaxInterval = dialMaxInterval
	policy.MaxElapsedTime = dialMaxElapsedTime

	var conn Connection
	operation := func() error {
		var err error
		conn, err = Dial(ctx, address)
		return err
	}

	notify := func(err error, next time.Duration) {
		logger.Warn("dial failed, retrying",
			zap.String("address", address),
			zap.Duration("next", next),
			zap.Error(err))
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
