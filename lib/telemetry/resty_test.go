package telemetry

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderAttributesRedactsCookies(t *testing.T) {
	headers := http.Header{}
	headers.Set("Cookie", "__cf_bm=secret")
	headers.Set("User-Agent", "Mozilla/5.0")
	headers.Add("Accept", "a")
	headers.Add("Accept", "b")

	values := map[string]string{}
	for _, attr := range headerAttributes("request", headers) {
		values[string(attr.Key)] = attr.Value.AsString()
	}

	require.Equal(t, "<redacted>", values["request/header: Cookie"])
	require.Equal(t, "Mozilla/5.0", values["request/header: User-Agent"])
	require.Equal(t, "a, b", values["request/header: Accept"])
}
