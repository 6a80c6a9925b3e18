package resume

// ResumeData is the canonical structured resume document. It is the wire
// contract between the extraction pipeline, the editor and the public page:
// field names and optionality are part of the compatibility surface.
type ResumeData struct {
	Header         Header           `json:"header" validate:"required"`
	Summary        string           `json:"summary"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Projects       []Project        `json:"projects"`
	Education      []Education      `json:"education"`
}

type Header struct {
	Name       string    `json:"name" validate:"required"`
	ShortAbout string    `json:"shortAbout"`
	Location   string    `json:"location,omitempty"`
	Contacts   *Contacts `json:"contacts,omitempty"`
	Skills     []string  `json:"skills"`
}

type Contacts struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// WorkExperience is one position. End is nil while the position is ongoing;
// Start and End carry partial dates (YYYY, YYYY-MM or YYYY-MM-DD).
type WorkExperience struct {
	Company     string  `json:"company"`
	Link        string  `json:"link,omitempty"`
	Location    string  `json:"location,omitempty"`
	Contract    string  `json:"contract,omitempty"`
	Title       string  `json:"title"`
	Start       string  `json:"start"`
	End         *string `json:"end"`
	Description string  `json:"description"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Link         string   `json:"link,omitempty"`
	Technologies []string `json:"technologies"`
	Date         string   `json:"date,omitempty"`
	Highlights   []string `json:"highlights"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Score  string `json:"score,omitempty"`
}
