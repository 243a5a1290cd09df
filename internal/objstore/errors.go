package objstore

import "errors"

// Sentinel errors returned by Store operations. The s3api package maps
// these onto the wire error-code set of the HTTP dispatcher.
var (
	ErrNoSuchBucket        = errors.New("objstore: no such bucket")
	ErrNoSuchKey           = errors.New("objstore: no such key")
	ErrBucketNotEmpty      = errors.New("objstore: bucket not empty")
	ErrBucketAlreadyExists = errors.New("objstore: bucket already exists")
	ErrInvalidDigest       = errors.New("objstore: content-md5 mismatch")
	ErrInvalidRequest      = errors.New("objstore: invalid request")
	ErrNoSuchUpload        = errors.New("objstore: no such upload")
	ErrInvalidPartOrder    = errors.New("objstore: parts not in ascending order")
	ErrInternal            = errors.New("objstore: internal error")
)
