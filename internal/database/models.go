package database

// Insight categories. Every insight carries exactly one.
const (
	CategoryArticle    = "article"
	CategorySocial     = "social_reference"
	CategoryVideo      = "video"
	CategoryCode       = "code"
	CategoryDiscussion = "discussion"
	CategoryNote       = "note"
	CategoryJunk       = "junk"
	CategoryPersonal   = "personal"
)

// Insight statuses. Mutually exclusive; archiving is the soft delete.
const (
	StatusPending   = "pending"
	StatusResponded = "responded"
	StatusArchived  = "archived"
)

// Extraction statuses for link-derived insights.
const (
	ExtractionPending = "pending"
	ExtractionSuccess = "success"
	ExtractionFailed  = "failed"
)

// Insight is a single captured unit of content: a note, a shared link,
// or an extracted article.
type Insight struct {
	ID               int64
	Content          string
	SourceURL        *string
	SharedBy         *string
	SharedDate       *string
	ContextMessage   *string
	Category         string
	Tags             []string
	QualityScore     int
	ExtractedText    *string
	ExtractionStatus string
	Status           string
	LastShownDate    *string
	TimesShown       int
	TimesSkipped     int
	IsDuplicate      bool
	DuplicateOf      *int64
	UsefulForDaily   bool
	CreatedAt        *string
}

// Response is a user's written reaction to an insight.
type Response struct {
	ID           int64
	InsightID    int64
	ResponseText string
	CreatedAt    *string
}

// Generation is one synthesis run's output: the topic, the ordered source
// insights it drew from, and the three generated artifacts.
type Generation struct {
	ID            int64
	Topic         string
	SourceIDs     []int64
	LinkedInPost  string
	TwitterThread []string
	BlogOutline   string
	Feedback      *string
	CreatedAt     *string
}

// UserAction is one row of the action audit log (shown, skipped, archived,
// responded).
type UserAction struct {
	ID         int64
	InsightID  int64
	ActionType string
	ActionDate *string
}

// DailySession records which insights a practice session showed.
type DailySession struct {
	ID          int64
	SessionDate string
	InsightIDs  []int64
	Completed   bool
	CreatedAt   *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalInsights   int
	PendingInsights int
	Responded       int
	Archived        int
	Duplicates      int
	UsefulForDaily  int
	Responses       int
	Generations     int
	ByCategory      map[string]int
}
