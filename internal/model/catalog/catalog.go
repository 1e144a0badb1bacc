package catalog

// Feeling 首页的情绪入口，点击后以 Name 作为话题开启会话。
type Feeling struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Story is a community testimonial.
type Story struct {
	Icon      string `json:"icon"`
	IconColor string `json:"iconColor"`
	Title     string `json:"title"`
	Quote     string `json:"quote"`
	Likes     int    `json:"likes"`
}

type Review struct {
	Reviewer string `json:"reviewer"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// Availability values.
const (
	AvailableNow  = "Available Now"
	ByAppointment = "By Appointment"
)

// Professional is a directory entry. Pricing is per session.
type Professional struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Image        string   `json:"image"`
	Credentials  string   `json:"credentials"`
	Type         string   `json:"type"`
	Availability string   `json:"availability"`
	FreeSession  bool     `json:"freeSession"`
	Pricing      int      `json:"pricing"`
	Specialties  []string `json:"specialties"`
	Bio          string   `json:"bio"`
	Approach     string   `json:"approach"`
	Experience   int      `json:"experience"`
	Languages    []string `json:"languages"`
	Rating       float64  `json:"rating"`
	Reviews      []Review `json:"reviews"`
}

type Community struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Members      int    `json:"members"`
	Category     string `json:"category"`
	CategoryIcon string `json:"categoryIcon"`
}

// GuidedJourney is a community led by a named guide.
type GuidedJourney struct {
	Community
	GuideName string `json:"guideName"`
}

// Resource is a library item. Section is Meditation or Reading; Category is the
// media kind.
type Resource struct {
	ID          int    `json:"id"`
	Section     string `json:"section"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Bookmarked  bool   `json:"bookmarked"`
	Content     string `json:"content"`
	MediaURL    string `json:"mediaUrl,omitempty"`
}

var (
	ProfessionalTypes = []string{"Psychologist", "Counselor", "Psychiatrist", "Therapist", "Yoga Therapist", "Spiritual Guide"}
	CommunityFilters  = []string{"All", "Meditation", "Pranayam", "Mandala Art", "Dynamic Dancing", "Yoga"}
	ResourceFilters   = []string{"All", "Meditation", "Reading", "Exercise", "Audio", "Video"}
)
