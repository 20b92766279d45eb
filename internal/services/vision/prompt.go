package vision

const shelfPrompt = `Analyze this photo of DVD/Blu-ray movie cases (likely on a shelf or in a collection).

For each visible movie, identify:
1. Title - exact title as printed on the case spine or front
2. Format - Look for these indicators:
   - "DVD" logo (usually red/orange)
   - "Blu-ray" or "Blu-ray Disc" logo (blue)
   - "4K Ultra HD" logo (black/gold)
3. Notes - Any edition info visible (Special Edition, Collector's Edition, season numbers, etc.)
4. Genre - The genre of the movie (Action, Comedy, Drama, Horror, Sci-Fi, etc.) based on your knowledge
5. Release Date - The theatrical release year (e.g., "1994", "2010") based on your knowledge
6. Actors - Top billed actors (e.g., "Tom Hanks, Robin Wright") based on your knowledge

Return ONLY a valid JSON array, no other text or explanation:
[
  {
    "title": "Movie Title",
    "format": "DVD",
    "notes": "edition info or empty string",
    "genre": "Genre",
    "releaseDate": "Year",
    "actors": "Actor 1, Actor 2",
    "confidence": 0.95
  }
]

Format values must be exactly one of: "DVD", "Blu-ray", "4K Ultra HD"

Set confidence (0.0-1.0) based on how clearly you can read the title:
- 0.9-1.0: Perfectly clear and readable
- 0.7-0.9: Readable but partially obscured or at angle
- 0.5-0.7: Partially visible, making educated guess
- <0.5: Very uncertain

If no movies are visible or the image doesn't show movie cases, return: []`

const barcodePrompt = `Look at this image and find any barcodes (UPC, EAN, ISBN).

Please extract the barcode number(s) you can see. Return ONLY a JSON object with the barcode number, no other text:

{"barcode": "123456789012", "type": "UPC-A"}

If you cannot find a clear barcode, return: {"barcode": null, "error": "No barcode detected"}

Common barcode formats:
- UPC-A: 12 digits
- EAN-13: 13 digits
- ISBN: 10 or 13 digits`
