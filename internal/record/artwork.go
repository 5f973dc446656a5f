package record

import (
	"errors"
	"fmt"
)

// ErrBadObjectID marks a row whose object id is absent or not an integer.
var ErrBadObjectID = errors.New("missing or invalid object id")

// Artwork is the typed form of one CSV row.
type Artwork struct {
	ObjectID          int64
	Title             string
	ArtistDisplayName string
	ArtistDisplayBio  string
	ArtistNationality string
	ArtistBeginDate   string
	ArtistEndDate     string
	ObjectDate        string
	ObjectBeginDate   *int64
	ObjectEndDate     *int64
	Department        string
	Classification    string
	ObjectName        string
	Medium            string
	Culture           string
	Country           string
	Tags              []string
	IsPublicDomain    int
	IsHighlight       int
	LinkResource      string

	// CSVPrimaryImage and CSVPrimaryImageSmall are the row's own image
	// columns, used only when the image cache has no entry.
	CSVPrimaryImage      string
	CSVPrimaryImageSmall string

	// MetadataJSON is the full source row with sorted keys.
	MetadataJSON string
}

// Normalize converts a raw row. Only the object id can fail.
func Normalize(raw Raw) (Artwork, error) {
	id := ParseIntOrNil(raw.Get(ColObjectID))
	if id == nil {
		return Artwork{}, ErrBadObjectID
	}
	meta, err := raw.JSON()
	if err != nil {
		return Artwork{}, fmt.Errorf("object %d: %w", *id, err)
	}

	return Artwork{
		ObjectID:             *id,
		Title:                Text(raw.Get(ColTitle)),
		ArtistDisplayName:    Text(raw.Get(ColArtistDisplayName)),
		ArtistDisplayBio:     Text(raw.Get(ColArtistDisplayBio)),
		ArtistNationality:    Text(raw.Get(ColArtistNationality)),
		ArtistBeginDate:      Text(raw.Get(ColArtistBeginDate)),
		ArtistEndDate:        Text(raw.Get(ColArtistEndDate)),
		ObjectDate:           Text(raw.Get(ColObjectDate)),
		ObjectBeginDate:      ParseIntOrNil(raw.Get(ColObjectBeginDate)),
		ObjectEndDate:        ParseIntOrNil(raw.Get(ColObjectEndDate)),
		Department:           Text(raw.Get(ColDepartment)),
		Classification:       Text(raw.Get(ColClassification)),
		ObjectName:           Text(raw.Get(ColObjectName)),
		Medium:               Text(raw.Get(ColMedium)),
		Culture:              Text(raw.Get(ColCulture)),
		Country:              Text(raw.Get(ColCountry)),
		Tags:                 ParseTags(raw.Get(ColTags)),
		IsPublicDomain:       ParseBoolInt(raw.Get(ColIsPublicDomain)),
		IsHighlight:          ParseBoolInt(raw.Get(ColIsHighlight)),
		LinkResource:         Text(raw.Get(ColLinkResource)),
		CSVPrimaryImage:      Text(raw.Get(ColPrimaryImage)),
		CSVPrimaryImageSmall: Text(raw.Get(ColPrimaryImageSmall)),
		MetadataJSON:         meta,
	}, nil
}
