// Package tmdb enriches movie candidates with metadata from The Movie
// Database: canonical title, genres, release year, and top billed cast.
package tmdb
