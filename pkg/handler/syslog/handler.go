// Package syslog is the datagram handler attached to listeners of syslog
// frontends. It only decodes the priority header and reports the message;
// storage and forwarding belong to the frontend. Binding hands it to the
// receiver, and the owner of the bound socket calls HandleDatagram for each
// datagram read.
package syslog

import (
	"context"
	"errors"
	"net"
	"strconv"

	"github.com/go-gost/core/metadata"
	mdutil "github.com/go-gost/x/metadata/util"
	"github.com/go-gost/dgram/pkg/handler"
	"github.com/go-gost/dgram/pkg/logger"
)

var (
	ErrInvalidPriority = errors.New("syslog: invalid priority")
	ErrMessageTooLong  = errors.New("syslog: message too long")
)

const (
	defaultMaxLength = 1024
)

type metadataOptions struct {
	maxLength int
}

type syslogHandler struct {
	md      metadataOptions
	options handler.Options
}

func NewHandler(opts ...handler.Option) handler.Handler {
	options := handler.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = logger.Nop()
	}

	return &syslogHandler{
		options: options,
	}
}

func (h *syslogHandler) Init(md metadata.Metadata) error {
	const (
		maxLength = "maxLength"
	)

	h.md.maxLength = mdutil.GetInt(md, maxLength)
	if h.md.maxLength <= 0 {
		h.md.maxLength = defaultMaxLength
	}
	return nil
}

// HandleDatagram decodes the <PRI> header of a syslog datagram.
func (h *syslogHandler) HandleDatagram(ctx context.Context, b []byte, src net.Addr) error {
	if max := h.md.maxLength; max > 0 && len(b) > max {
		return ErrMessageTooLong
	}

	pri, body, err := ParsePriority(b)
	if err != nil {
		h.options.Logger.Debugf("%s: %v", src, err)
		return err
	}

	if h.options.Logger.IsLevelEnabled(logger.DebugLevel) {
		h.options.Logger.WithFields(map[string]any{
			"src":      src.String(),
			"facility": pri / 8,
			"severity": pri % 8,
		}).Debugf("%d bytes", len(body))
	}
	return nil
}

// ParsePriority splits a syslog datagram into its priority value and body.
func ParsePriority(b []byte) (pri int, body []byte, err error) {
	if len(b) < 3 || b[0] != '<' {
		return 0, nil, ErrInvalidPriority
	}

	end := -1
	for i := 1; i < len(b) && i <= 4; i++ {
		if b[i] == '>' {
			end = i
			break
		}
	}
	if end < 2 {
		return 0, nil, ErrInvalidPriority
	}

	pri, err = strconv.Atoi(string(b[1:end]))
	if err != nil || pri < 0 || pri > 191 {
		return 0, nil, ErrInvalidPriority
	}
	return pri, b[end+1:], nil
}
