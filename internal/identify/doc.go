// Package identify compares and interprets movie titles.
//
// It owns the canonical title normalization used for duplicate detection,
// the substring-based duplicate matcher every import path funnels through,
// and the keyword rules that read format and edition information out of
// retail product titles.
package identify
