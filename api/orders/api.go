// Package orders declares enrollment and its payment boundary. The
// enroll mutation hands back a hosted-checkout URL; the payment
// provider later returns to a success route whose query parameters are
// parsed verbatim, the server being the authority on payment state.
package orders

import (
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/api/courses"
	"github.com/trezcool/elimu/cache"
)

// EnrollInput addresses an enrollment at a course.
type EnrollInput struct {
	CourseID string `json:"courseId"`
}

// Enrollment is what the enroll mutation resolves with.
type Enrollment struct {
	PaymentURL string `json:"paymentUrl"`
}

// EnrolledCourse is one entry of the my-courses list.
type EnrolledCourse struct {
	ID        string         `json:"_id"`
	Course    courses.Course `json:"course"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

var (
	MyCourses = api.Query{
		Name:     "orders.myCourses",
		Provides: []cache.Tag{cache.TagCourse},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/orders/my-courses"}, nil
		},
	}

	Enroll = api.Mutation{
		Name:        "orders.enroll",
		Invalidates: []cache.Tag{cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(EnrollInput)
			if !ok {
				return api.Descriptor{}, errors.Errorf("orders.enroll: unexpected args type %T", args)
			}
			if in.CourseID == "" {
				return api.Descriptor{}, errors.New("orders.enroll: course id required")
			}
			return api.Descriptor{Method: http.MethodPost, Path: "/orders/enroll/" + in.CourseID}, nil
		},
	}
)

// PaymentResult carries the payment outcome exactly as the provider's
// success redirect reported it; nothing here is verified client-side.
type PaymentResult struct {
	TransactionID string
	Amount        string
	Status        string
	Message       string
}

// ParsePaymentCallback reads the provider's success-route query
// parameters.
func ParsePaymentCallback(params url.Values) PaymentResult {
	return PaymentResult{
		TransactionID: params.Get("transactionId"),
		Amount:        params.Get("amount"),
		Status:        params.Get("status"),
		Message:       params.Get("message"),
	}
}
