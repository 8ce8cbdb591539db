package schema

// Canonical field names used by the extraction layer.
const (
	FieldName       = "Name"
	FieldType       = "Type"
	FieldLatitude   = "Latitude"
	FieldLongitude  = "Longitude"
	FieldNotes      = "Notes"
	FieldMapLink    = "Google Maps link"
	FieldAddress    = "Address"
	FieldLink       = "Official Link"
	FieldPlace      = "Place"
	FieldPlaceName  = "Name (from Place)"
	FieldRecurrence = "Recurrence"
	FieldDate       = "Date (if not recurrent)"
	FieldWhen       = "When (if recurrent)"
)

// Places returns the built-in schema for place rows.
func Places() Schema {
	return Schema{
		FieldName: {
			Keys:    []string{"Name", "name"},
			Type:    TypeString,
			Default: "Unnamed Location",
		},
		FieldNotes: {
			Keys:    []string{"Notes", "notes", "Description"},
			Type:    TypeString,
			Default: "",
		},
		FieldType: {
			// The store may return a single string or a list of strings
			Keys:    []string{"Type", "type", "Category"},
			Type:    TypeStringList,
			Default: []string{},
		},
		FieldLatitude: {
			Keys:    []string{"Latitude", "lat"},
			Type:    TypeFloat,
			Default: nil,
		},
		FieldLongitude: {
			Keys:    []string{"Longitude", "lon", "lng"},
			Type:    TypeFloat,
			Default: nil,
		},
		FieldMapLink: {
			Keys:    []string{"Google Maps link", "URL", "Link"},
			Type:    TypeString,
			Default: "#",
		},
		FieldAddress: {
			Keys:    []string{"Address", "address"},
			Type:    TypeString,
			Default: "",
		},
	}
}

// Events returns the built-in schema for event rows.
func Events() Schema {
	return Schema{
		FieldName: {
			Keys:    []string{"Name", "name"},
			Type:    TypeString,
			Default: "Event",
		},
		FieldLink: {
			Keys:    []string{"Official Link", "Link", "URL"},
			Type:    TypeString,
			Default: "",
		},
		FieldPlace: {
			Keys:    []string{"Place", "Places"},
			Type:    TypeStringList,
			Default: []string{},
		},
		FieldPlaceName: {
			Keys:    []string{"Name (from Place)"},
			Type:    TypeStringList,
			Default: []string{},
		},
		FieldRecurrence: {
			Keys:    []string{"Recurrence"},
			Type:    TypeString,
			Default: "",
		},
		FieldDate: {
			Keys:    []string{"Date (if not recurrent)", "Date"},
			Type:    TypeString,
			Default: "",
		},
		FieldWhen: {
			Keys:    []string{"When (if recurrent)", "When"},
			Type:    TypeString,
			Default: "",
		},
	}
}
