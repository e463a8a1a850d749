package protocol

import "errors"

var (
	ErrTruncated        = errors.New("protocol: truncated data")
	ErrDelimiterInParam = errors.New("protocol: record separator inside parameter")
	ErrDelimiterInToken = errors.New("protocol: record separator inside token")
)
