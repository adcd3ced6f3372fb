// Package wiki locates and fetches articles from MediaWiki-powered sites.
//
// It resolves the Action API endpoint for a bare host (Resolve), turns a
// free-text query into a canonical page (Search), and retrieves the page's
// raw wikitext (Fetch). Rendering lives in the wikitext package.
package wiki
