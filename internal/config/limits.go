package config

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxProjectTitleLength = 255

	// MaxDocumentNameLength is the maximum length for document names.
	MaxDocumentNameLength = 255

	// MaxCodeNameLength is the maximum length for code names.
	// Codes are short analytic labels; long names belong in the description.
	MaxCodeNameLength = 120

	// MaxCodebookNameLength is the maximum length for codebook names.
	MaxCodebookNameLength = 255

	// MaxThemeNameLength is the maximum length for theme names.
	MaxThemeNameLength = 255

	// MaxResearchItems caps research questions and objectives per project.
	MaxResearchItems = 50

	// MaxDocumentContentBytes caps plain-text document content (10MB, same as the request body limit).
	MaxDocumentContentBytes = 10 << 20
)

// Display defaults applied when a code is created without them.
const (
	DefaultCodeColor       = "#3B82F6"
	DefaultCodeDescription = "No description"
)

// MaxRequestBodyBytes caps JSON request bodies. Document creation is the
// largest payload, so the cap leaves room for its JSON envelope.
const MaxRequestBodyBytes = MaxDocumentContentBytes + 1<<20
