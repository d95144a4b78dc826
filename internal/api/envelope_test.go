package api

import (
	"testing"

	"banbds/internal/domain"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    domain.Result
		wantErr bool
	}{
		{
			name: "success with data",
			body: `{"status":"Success","data":{"id":1}}`,
			want: domain.Result{Kind: domain.ResultSuccess, Data: []byte(`{"id":1}`)},
		},
		{
			name: "success without data",
			body: `{"status":"Success"}`,
			want: domain.Result{Kind: domain.ResultSuccess},
		},
		{
			name: "success with null data",
			body: `{"status":"Success","data":null}`,
			want: domain.Result{Kind: domain.ResultSuccess},
		},
		{
			name: "device unauthorized",
			body: `{"status":"Unauthorized","message":"Device token invalid"}`,
			want: domain.Result{Kind: domain.ResultUnauthorized, Reason: domain.ReasonDevice, Message: "Device token invalid"},
		},
		{
			name: "user unauthorized",
			body: `{"status":"Unauthorized","message":"User token expired"}`,
			want: domain.Result{Kind: domain.ResultUnauthorized, Reason: domain.ReasonUser, Message: "User token expired"},
		},
		{
			name: "not process",
			body: `{"status":"Not Process","message":"Renew"}`,
			want: domain.Result{Kind: domain.ResultNotProcessable, Message: "Renew"},
		},
		{
			name: "error maps to not processable",
			body: `{"status":"Error","error":"phone already used"}`,
			want: domain.Result{Kind: domain.ResultNotProcessable, Message: "phone already used"},
		},
		{
			name: "image format",
			body: `{"status":"ImageFormat"}`,
			want: domain.Result{Kind: domain.ResultImageRejected, Image: domain.ImageFormat},
		},
		{
			name: "image too big",
			body: `{"status":"ImageToBig"}`,
			want: domain.Result{Kind: domain.ResultImageRejected, Image: domain.ImageTooBig},
		},
		{name: "unknown status", body: `{"status":"Teapot"}`, wantErr: true},
		{name: "missing status", body: `{"data":1}`, wantErr: true},
		{name: "html", body: `<html>bad gateway</html>`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeEnvelope([]byte(tc.body))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeEnvelope: %v", err)
			}
			if got.Kind != tc.want.Kind || got.Reason != tc.want.Reason ||
				got.Message != tc.want.Message || got.Image != tc.want.Image ||
				string(got.Data) != string(tc.want.Data) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
