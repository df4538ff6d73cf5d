// Package api exposes the catalog, ingestion and chat actions over HTTP.
//
// Every action answers 200 with a JSON body on success. Failures answer
// 404 when the addressed record does not exist and 400 otherwise, with the
// error message passed through unchanged as {"error": "..."}.
package api
