// Package barcode turns a photo of a disc case barcode into a movie
// candidate.
//
// The workflow runs in three steps: read the UPC/EAN number from the photo,
// look the product up in UPCitemdb, then enrich the cleaned product title
// through TMDB. TMDB enrichment is best effort; a product match alone is
// enough for a successful result.
package barcode
