package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httpclient"
)

func TestSubmissionMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "duplicate key names the field",
			body: `{"message":"Duplicate key error","errorMessages":[{"path":"sku","message":"sku must be unique"}]}`,
			want: "This sku is already in use by another product. Please choose a different one.",
		},
		{
			name: "duplicate key without details",
			body: `{"message":"E11000 Duplicate key error collection"}`,
			want: "This field is already in use by another product. Please choose a different one.",
		},
		{
			name: "structured errors joined per line",
			body: `{"message":"Validation Error","errorMessages":[{"path":"gsm","message":"Expected number"},{"path":"slug","message":"Required"}]}`,
			want: "gsm: Expected number\nslug: Required",
		},
		{
			name: "backend message",
			body: `{"message":"Category not found"}`,
			want: "Category not found",
		},
		{
			name: "unparseable body",
			body: `<html>bad gateway</html>`,
			want: "Failed to save product",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := httpclient.DecodeResponseError(ServiceName, http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.want, SubmissionMessage(fmt.Errorf("call: %w", err)))
		})
	}

	assert.Equal(t, "Failed to save product", SubmissionMessage(errors.New("dial tcp: refused")))
}

func TestDeleteMessage(t *testing.T) {
	err := httpclient.DecodeResponseError(ServiceName, http.StatusConflict, []byte(`{"message":"Product is referenced by an order"}`))
	assert.Equal(t, "Product is referenced by an order", DeleteMessage(err))
	assert.Equal(t, "Failed to delete product.", DeleteMessage(errors.New("timeout")))
}

func TestRejection_Status(t *testing.T) {
	clientErr := httpclient.DecodeResponseError(ServiceName, http.StatusConflict, nil)
	appErr := Rejection(clientErr, CodeSubmissionRejected, "dup")
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "SUBMISSION_REJECTED", appErr.Code)
	assert.Equal(t, "dup", appErr.Message)

	serverErr := httpclient.DecodeResponseError(ServiceName, http.StatusInternalServerError, nil)
	assert.Equal(t, http.StatusBadGateway, Rejection(serverErr, CodeDeleteRejected, "x").Status)
	assert.Equal(t, http.StatusBadGateway, Rejection(errors.New("net"), CodeDeleteRejected, "x").Status)
}
