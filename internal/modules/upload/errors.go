package upload

import "errors"

var (
	ErrNoFile               = errors.New("please upload a file")
	ErrEmptyFile            = errors.New("file is empty")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrInvalidFileType      = errors.New("only .jpeg, .jpg, .png and .pdf files are allowed")
	ErrInvalidDocumentType  = errors.New("invalid document type")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("not authorized")
	ErrNotEditable          = errors.New("documents can only be changed while the application is a draft")
	ErrStoredObjectNotFound = errors.New("stored file is missing")
)
