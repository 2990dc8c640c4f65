package masterdata

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"

	"hrconsole/internal/gateway"
)

type gatewayCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// fakeGateway stores tables in memory and assigns ids on save, like the
// real gateway does.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []gatewayCall
	tables  map[string][]gateway.Row
	nextID  int
	listErr error
	result  *gateway.Result
	postErr error
	block   chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{tables: map[string][]gateway.Row{}, nextID: 100}
}

func (f *fakeGateway) record(c gatewayCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeGateway) Calls(method, path string) []gatewayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []gatewayCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGateway) List(ctx context.Context, path string, query url.Values) ([]gateway.Row, error) {
	f.record(gatewayCall{Method: "GET", Path: path, Query: query})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	rows := make([]gateway.Row, len(f.tables[path]))
	copy(rows, f.tables[path])
	return rows, nil
}

func (f *fakeGateway) Post(ctx context.Context, path string, query url.Values, body any) (gateway.Result, error) {
	encoded, _ := json.Marshal(body)
	var decoded map[string]any
	_ = json.Unmarshal(encoded, &decoded)
	f.record(gatewayCall{Method: "POST", Path: path, Query: query, Body: decoded})

	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return gateway.Result{}, f.postErr
	}
	if f.result != nil {
		return *f.result, nil
	}
	if path == "/category/save" {
		f.nextID++
		row := gateway.Row{}
		for k, v := range decoded {
			row[k] = v
		}
		row["id"] = json.Number(strconv.Itoa(f.nextID))
		f.tables["/category/list"] = append(f.tables["/category/list"], row)
	}
	return gateway.Result{Outcome: gateway.Success, StatusCode: 1}, nil
}

func (f *fakeGateway) Delete(ctx context.Context, path string, query url.Values) (gateway.Result, error) {
	f.record(gatewayCall{Method: "DELETE", Path: path, Query: query})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return gateway.Result{}, f.postErr
	}
	if f.result != nil {
		return *f.result, nil
	}
	return gateway.Result{Outcome: gateway.Success, StatusCode: 1}, nil
}

func categoryRows() []gateway.Row {
	return []gateway.Row{
		{"id": json.Number("1"), "collegeCode": "001", "categoryName": "Science"},
		{"id": json.Number("2"), "collegeCode": "002", "categoryName": "Arts"},
		{"id": json.Number("3"), "collegeCode": "1", "categoryName": "Commerce"},
		{"id": json.Number("42"), "collegeCode": "9", "categoryName": "Social Science"},
	}
}

func colleges() []gateway.Row {
	return []gateway.Row{
		{"collegeCode": "0001", "collegeName": "City College"},
		{"collegeCode": json.Number("2"), "collegeName": "North Campus"},
	}
}
