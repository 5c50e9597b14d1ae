package common

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyStatement      = errors.New("statement contains no data rows")
	ErrUnreadableFile      = errors.New("file content could not be decoded")
)
