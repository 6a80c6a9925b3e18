package resume

// Fallback returns the placeholder document substituted when automated
// extraction fails. Every value is obviously fake and editable, so the
// pipeline always terminates with a renderable resume.
func Fallback() *ResumeData {
	return &ResumeData{
		Header: Header{
			Name:       "Your Name",
			ShortAbout: "Professional with experience in their field",
			Location:   "Location",
			Contacts: &Contacts{
				Email: "email@example.com",
			},
			Skills: []string{"Skill 1", "Skill 2", "Skill 3"},
		},
		Summary: "A dedicated professional with a track record of success. " +
			"Please update this section with your actual summary.",
		WorkExperience: []WorkExperience{
			{
				Company:     "Company Name",
				Location:    "Location",
				Contract:    "Full-time",
				Title:       "Job Title",
				Start:       "2020-01-01",
				End:         nil,
				Description: "Please update with your actual work experience.",
			},
		},
		Projects: []Project{
			{
				Name:         "Sample Project",
				Description:  "Please update with your actual projects.",
				Technologies: []string{"Technology 1", "Technology 2"},
				Highlights:   []string{},
			},
		},
		Education: []Education{
			{
				School: "University Name",
				Degree: "Degree",
				Start:  "2016",
				End:    "2020",
			},
		},
	}
}
