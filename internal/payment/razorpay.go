package payment

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Razorpay is the Gateway backed by the Razorpay Orders API
type Razorpay struct {
	client *razorpay.Client
	keyID  string
	secret string
}

// Option configures a Razorpay gateway
type Option func(*Razorpay)

// WithBaseURL points the client at a different API host
func WithBaseURL(url string) Option {
	return func(r *Razorpay) {
		r.client.Order.Request.BaseURL = url
	}
}

// WithTimeout sets the HTTP timeout in seconds
func WithTimeout(seconds int16) Option {
	return func(r *Razorpay) {
		r.client.Order.Request.SetTimeout(seconds)
	}
}

// NewRazorpay creates a gateway for the given API key pair
func NewRazorpay(keyID, secret string, opts ...Option) *Razorpay {
	r := &Razorpay{
		client: razorpay.NewClient(keyID, secret),
		keyID:  keyID,
		secret: secret,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Razorpay) KeyID() string { return r.keyID }

// CreateOrder creates a Razorpay order with automatic capture.
// The SDK has no context support, so ctx only bounds how long we wait for it.
func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	data := map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		body, err := r.client.Order.Create(data, nil)
		done <- result{body, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrGateway, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		log.WithError(res.err).WithField("receipt", req.Receipt).Error("Razorpay order creation failed")
		return nil, fmt.Errorf("%w: %v", ErrGateway, res.err)
	}

	order := &Order{
		ID:       stringField(res.body, "id"),
		Amount:   int64Field(res.body, "amount"),
		Currency: stringField(res.body, "currency"),
		Receipt:  stringField(res.body, "receipt"),
		Status:   stringField(res.body, "status"),
	}
	// razorpay-go swallows 4xx responses tagged BAD_REQUEST_ERROR and hands
	// back an empty body with a nil error, so the description is lost here.
	if order.ID == "" {
		log.WithField("receipt", req.Receipt).Error("Razorpay rejected order request")
		return nil, fmt.Errorf("%w: response without order id", ErrGateway)
	}

	log.WithFields(logrus.Fields{
		"gateway_order_id": order.ID,
		"amount":           order.Amount,
		"duration":         time.Since(start).String(),
	}).Info("Razorpay order created")
	return order, nil
}

// VerifySignature checks HMAC-SHA256(order_id|payment_id) against the key secret
func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, r.secret)
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func int64Field(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
