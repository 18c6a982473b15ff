package shopify

import (
	"errors"
	"strings"
	"testing"
)

func TestAdminClient_URL(t *testing.T) {
	c := NewAdminClient()

	got := c.url("demo.myshopify.com", "carrier_services.json")
	want := "https://demo.myshopify.com/admin/api/" + defaultAPIVersion + "/carrier_services.json"
	if got != want {
		t.Errorf("url = %s, want %s", got, want)
	}
}

func TestIsAlreadyConfigured(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"命中冲突", &APIError{StatusCode: 422, Body: `{"errors":{"base":["Carrier service is already configured"]}}`}, true},
		{"422但非冲突", &APIError{StatusCode: 422, Body: `{"errors":"invalid"}`}, false},
		{"其他状态码", &APIError{StatusCode: 401, Body: "already configured"}, false},
		{"普通错误", errors.New("already configured"), false},
		{"nil", nil, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsAlreadyConfigured(c.err); got != c.want {
				t.Errorf("IsAlreadyConfigured = %v, want %v", got, c.want)
			}
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 404, Body: "Not Found"}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("错误信息应包含状态码: %s", err.Error())
	}
}
