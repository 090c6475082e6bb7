package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"budget/internal/app"
)

const maxBodyBytes = 64 << 10

// transactionBody is the JSON form of a submission. Amount may be a number
// or a string; strings go through the same parsing as the HTML form.
type transactionBody struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount json.RawMessage `json:"amount"`
	Date   string          `json:"date"`
}

// parseTransactionInput reads a submission from a form or a JSON body and
// reports which one it was.
func parseTransactionInput(w http.ResponseWriter, r *http.Request) (app.FormInput, bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isJSONRequest(r) {
		in, err := parseJSONBody(r.Body)
		return in, true, err
	}

	if err := r.ParseForm(); err != nil {
		return app.FormInput{}, false, fmt.Errorf("parse form: %w", err)
	}
	return app.FormInput{
		EditingID: strings.TrimSpace(r.PostForm.Get("id")),
		Name:      sanitizeInput(r.PostForm.Get("name")),
		Amount:    r.PostForm.Get("amount"),
		Date:      strings.TrimSpace(r.PostForm.Get("date")),
	}, false, nil
}

func parseJSONBody(body io.Reader) (app.FormInput, error) {
	var b transactionBody
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return app.FormInput{}, fmt.Errorf("decode body: %w", err)
	}

	amount := ""
	if raw := strings.TrimSpace(string(b.Amount)); raw != "" && raw != "null" {
		var s string
		if err := json.Unmarshal(b.Amount, &s); err == nil {
			amount = s
		} else {
			var f float64
			if err := json.Unmarshal(b.Amount, &f); err != nil {
				return app.FormInput{}, fmt.Errorf("decode amount: %w", err)
			}
			amount = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}

	return app.FormInput{
		EditingID: strings.TrimSpace(b.ID),
		Name:      sanitizeInput(b.Name),
		Amount:    amount,
		Date:      strings.TrimSpace(b.Date),
	}, nil
}

func isJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// sanitizeInput drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
