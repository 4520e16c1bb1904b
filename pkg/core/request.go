package core

// Request describes one REST call before it is timestamped and signed.
type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Params Params `json:"params,omitempty"`
	// Signed requests get a timestamp, a signature and the API key header.
	Signed bool `json:"signed"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Params: make(Params),
	}
}

func (r *Request) SetParam(key, value string) *Request {
	if r.Params == nil {
		r.Params = make(Params)
	}
	r.Params[key] = value
	return r
}

func (r *Request) SetSigned(signed bool) *Request {
	r.Signed = signed
	return r
}
