package s3api

import (
	"encoding/xml"
	"net/http"

	"github.com/go-mizu/blueprints/s3emu/internal/objstore"
)

// APIError is a rendered <Error> document paired with the HTTP status it
// belongs to. writeErr renders it as-is; any other error is first mapped to
// an APIError by translateStoreErr.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

func newError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

var (
	errInvalidBucketName = newError(http.StatusBadRequest, "InvalidBucketName", "The specified bucket is not valid.")
	errInvalidRequest    = func(msg string) *APIError { return newError(http.StatusBadRequest, "InvalidRequest", msg) }
	errInvalidDigest     = newError(http.StatusBadRequest, "InvalidDigest", "The Content-MD5 you specified did not match what we received.")
	errMalformedXML      = newError(http.StatusBadRequest, "MalformedXML", "The XML you provided was not well-formed.")
	errNoSuchBucket      = newError(http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist.")
	errNoSuchKey         = newError(http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
	errNoSuchUpload      = newError(http.StatusNotFound, "NoSuchUpload", "The specified multipart upload does not exist.")
	errBucketExists      = newError(http.StatusConflict, "BucketAlreadyExists", "The requested bucket name is not available.")
	errBucketNotEmpty    = newError(http.StatusConflict, "BucketNotEmpty", "The bucket you tried to delete is not empty.")
	errInvalidPartOrder  = newError(http.StatusBadRequest, "InvalidPartOrder", "The list of parts was not in ascending order.")
	errInternal          = newError(http.StatusInternalServerError, "InternalError", "We encountered an internal error. Please try again.")
)

// translateStoreErr maps an objstore sentinel error to the wire APIError.
func translateStoreErr(err error) *APIError {
	switch err {
	case objstore.ErrNoSuchBucket:
		return errNoSuchBucket
	case objstore.ErrNoSuchKey:
		return errNoSuchKey
	case objstore.ErrBucketNotEmpty:
		return errBucketNotEmpty
	case objstore.ErrBucketAlreadyExists:
		return errBucketExists
	case objstore.ErrInvalidDigest:
		return errInvalidDigest
	case objstore.ErrInvalidRequest:
		return errInvalidRequest("The request was invalid.")
	case objstore.ErrNoSuchUpload:
		return errNoSuchUpload
	case objstore.ErrInvalidPartOrder:
		return errInvalidPartOrder
	default:
		return errInternal
	}
}

// errorDoc is the XML body rendered for every error response.
type errorDoc struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource"`
	RequestID string   `xml:"RequestId"`
}

func writeAPIError(w http.ResponseWriter, resource, requestID string, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("x-amz-request-id", requestID)
	w.WriteHeader(apiErr.Status)
	doc := errorDoc{
		Code:      apiErr.Code,
		Message:   apiErr.Message,
		Resource:  resource,
		RequestID: requestID,
	}
	_ = xml.NewEncoder(w).Encode(doc)
}
