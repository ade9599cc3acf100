package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	apierrors "chartsvc/internal/errors"
)

const fileField = "file"

type formField struct {
	key   string
	value string
}

// form holds the request's fields in the order the client sent them and the
// first uploaded file.
type form struct {
	fields  []formField
	file    []byte
	hasFile bool
}

// File returns the uploaded file and whether one was sent.
func (f *form) File() ([]byte, bool) {
	return f.file, f.hasFile
}

// Value returns the first value for key and whether the key was present.
func (f *form) Value(key string) (string, bool) {
	for _, fld := range f.fields {
		if fld.key == key {
			return fld.value, true
		}
	}
	return "", false
}

// Get returns the first value for key, or "".
func (f *form) Get(key string) string {
	v, _ := f.Value(key)
	return v
}

// Values returns every value for key in order.
func (f *form) Values(key string) []string {
	var out []string
	for _, fld := range f.fields {
		if fld.key == key {
			out = append(out, fld.value)
		}
	}
	return out
}

// readForm reads a multipart or urlencoded body. A request without a
// Content-Type yields an empty form.
func readForm(r *http.Request) (*form, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return &form{}, nil
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, apierrors.InvalidRequestWithError(err)
	}

	switch mediaType {
	case "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return nil, apierrors.InvalidRequestWithError(errors.New("multipart boundary is missing"))
		}
		return readMultipart(multipart.NewReader(r.Body, boundary), r.Body)
	case "application/x-www-form-urlencoded":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyError(err, r.Body)
		}
		return parseURLEncoded(string(body))
	default:
		return nil, apierrors.InvalidRequestWithError(fmt.Errorf("unsupported content type %q", mediaType))
	}
}

func readMultipart(mr *multipart.Reader, body io.Reader) (*form, error) {
	f := &form{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, bodyError(err, body)
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, bodyError(err, body)
		}

		name := part.FormName()
		switch {
		case name == "":
			continue
		case name == fileField && part.FileName() != "":
			if !f.hasFile {
				f.file, f.hasFile = data, true
			}
		default:
			f.fields = append(f.fields, formField{key: name, value: string(data)})
		}
	}
}

// parseURLEncoded keeps pair order, which url.ParseQuery does not.
func parseURLEncoded(body string) (*form, error) {
	f := &form{}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, apierrors.InvalidRequestWithError(err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, apierrors.InvalidRequestWithError(err)
		}
		f.fields = append(f.fields, formField{key: key, value: value})
	}
	return f, nil
}

// bodyError keeps body-limit errors intact for the 413 mapping. A limit hit
// inside a part header surfaces as a MIME syntax error, so the body is read
// once more: a tripped MaxBytesReader repeats its error on every read.
func bodyError(err error, body io.Reader) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	if body != nil {
		if _, readErr := body.Read(make([]byte, 1)); errors.As(readErr, &maxBytesErr) {
			return readErr
		}
	}
	return apierrors.InvalidRequestWithError(err)
}
