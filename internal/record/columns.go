package record

// Column names of the CSV extract.
const (
	ColObjectID          = "Object ID"
	ColTitle             = "Title"
	ColArtistDisplayName = "Artist Display Name"
	ColArtistDisplayBio  = "Artist Display Bio"
	ColArtistNationality = "Artist Nationality"
	ColArtistBeginDate   = "Artist Begin Date"
	ColArtistEndDate     = "Artist End Date"
	ColObjectDate        = "Object Date"
	ColObjectBeginDate   = "Object Begin Date"
	ColObjectEndDate     = "Object End Date"
	ColDepartment        = "Department"
	ColClassification    = "Classification"
	ColObjectName        = "Object Name"
	ColMedium            = "Medium"
	ColCulture           = "Culture"
	ColCountry           = "Country"
	ColTags              = "Tags"
	ColIsPublicDomain    = "Is Public Domain"
	ColIsHighlight       = "Is Highlight"
	ColLinkResource      = "Link Resource"
	ColPrimaryImage      = "Primary Image"
	ColPrimaryImageSmall = "Primary Image Small"
)
