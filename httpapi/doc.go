// Package httpapi exposes the lending workflow over HTTP.
//
// Routes are registered on a standard ServeMux using method and path
// patterns; errors are mapped centrally onto RFC 9457 problem details.
package httpapi
