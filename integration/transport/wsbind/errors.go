package wsbind

import "errors"

var (
	ErrMalformedEnvelope  = errors.New("message must be a JSON object")
	ErrMissingRoute       = errors.New("message route must be a string")
	ErrMalformedData      = errors.New("message data must be a JSON object")
	ErrUnsupportedMessage = errors.New("only text messages are supported")
	ErrEncodeReply        = errors.New("failed to encode reply")
)
