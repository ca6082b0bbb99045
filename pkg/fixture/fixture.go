// Package fixture defines the labeled traffic sample envelope consumed by
// fixture loaders and detection-pipeline test harnesses.
package fixture

// Pair is a name/value entry used for headers and query parameters.
type Pair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// URL describes the target of a simulated request.
type URL struct {
	Host       string `json:"host"`
	Path       string `json:"path"`
	Parameters []Pair `json:"parameters"`
}

// Request is the request half of a Sample.
type Request struct {
	URL     URL    `json:"url"`
	Headers []Pair `json:"headers"`
	Method  string `json:"method"`
	Body    string `json:"body"`
}

// Response is the response half of a Sample. Body holds the serialized payload.
type Response struct {
	Status  int    `json:"status"`
	Headers []Pair `json:"headers"`
	Body    string `json:"body"`
}

// Meta carries the provenance of a Sample.
type Meta struct {
	Environment     string `json:"environment"`
	Incoming        bool   `json:"incoming"`
	Source          string `json:"source"`
	SourcePort      int    `json:"sourcePort"`
	Destination     string `json:"destination"`
	DestinationPort int    `json:"destinationPort"`
	MetloSource     string `json:"metloSource"`
}

// Sample is one synthetic traffic event.
type Sample struct {
	Request  Request  `json:"request"`
	Response Response `json:"response"`
	Meta     Meta     `json:"meta"`
}

// NewRequest builds a request whose header and parameter lists are never nil,
// so they always serialize as JSON arrays.
func NewRequest(method, host, path string, params []Pair, headers []Pair, body string) Request {
	if params == nil {
		params = []Pair{}
	}
	if headers == nil {
		headers = []Pair{}
	}
	return Request{
		URL: URL{
			Host:       host,
			Path:       path,
			Parameters: params,
		},
		Headers: headers,
		Method:  method,
		Body:    body,
	}
}

// NewResponse builds a response with a non-nil header list.
func NewResponse(status int, headers []Pair, body string) Response {
	if headers == nil {
		headers = []Pair{}
	}
	return Response{
		Status:  status,
		Headers: headers,
		Body:    body,
	}
}
