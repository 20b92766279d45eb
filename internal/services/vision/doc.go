// Package vision reads shelf photos and barcode photos through the Claude
// messages API.
//
// IdentifyMovies turns a photo of disc cases into candidate records with a
// per-title confidence score; ExtractBarcode reads a UPC/EAN number out of
// a product photo. Both are best effort: an unparseable model response
// yields an empty result rather than an error so callers can fall back.
package vision
