// Package gemini wraps the Google Gemini generateContent API used to produce
// grounded answers from retrieved course material. The client requires an API
// key before issuing any network request and treats timeouts as generation
// failures for the caller to report.
package gemini
