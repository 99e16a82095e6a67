// Package catalog exposes a catalog.Resolver as a small net/http component that
// returns JSON option lists for make and model pickers.
//
// Two routes are served under the configured route path (default /api/makes):
//
//	GET /api/makes?q=toy&limit=10
//	GET /api/makes/{makeId}/models?q=cam&offset=50&order=catalog
//
// Responses have the shape {"data":[{"value":"1","label":"Toyota"}],"total":1}
// where total counts every match, not only the returned page. Matches whose
// name starts with the query are listed first unless order=catalog is passed;
// catalog order is kept otherwise. HEAD is answered without a body.
package catalog
