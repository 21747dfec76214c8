// Package web is the HTTP surface of the maintenance engine: a form
// render on GET and a submission on POST, both behind operator cookie
// authentication.
package web
