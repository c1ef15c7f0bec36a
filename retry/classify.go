package retry

import (
	"errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/status"
)

// Classified is implemented by errors that carry their own classification, such as the errors
// returned by a remote collaborator adapter.
type Classified interface {
	error
	Classification() (Classification, bool)
}

// Classifier reduces an error to a Classification. The boolean is false when the error carries no
// structured status code, in which case it is never retried.
type Classifier func(err error) (Classification, bool)

// Classify is the default Classifier. It inspects the whole wrap chain and understands, in order:
// errors implementing Classified, *googleapi.Error and gRPC status errors.
func Classify(err error) (Classification, bool) {
	if err == nil {
		return Classification{}, false
	}

	var classified Classified
	if errors.As(err, &classified) {
		return classified.Classification()
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 0 {
			return Classification{}, false
		}
		return Classification{Kind: KindGoogleAPI, Code: apiErr.Code}, true
	}

	if s, ok := status.FromError(err); ok {
		return Classification{Kind: KindGRPC, Code: int(s.Code())}, true
	}

	return Classification{}, false
}
