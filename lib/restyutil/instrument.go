package restyutil

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

// InstrumentClient writes every request/response exchange of client to
// output, one message per id. `output` can be nil, in which case this is a no-op.
func InstrumentClient(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := strconv.FormatUint(atomic.AddUint64(&idcounter, 1), 10)
		output.Write(fmt.Sprintf("%s.txt", id), formatHttpMessage(res))
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		id := strconv.FormatUint(atomic.AddUint64(&idcounter, 1), 10)
		output.Write(
			fmt.Sprintf("%s.error.txt", id),
			fmt.Sprintf("%s %s\n\n%s", req.Method, req.URL, err.Error()),
		)
	})
}
