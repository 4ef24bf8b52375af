package plant

// Plant is one tracked plant. Stage and species stay nil until the backend
// has analyzed at least one uploaded image.
type Plant struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	CoverImageURL   string       `json:"plantCoverUrl,omitempty"`
	LatestMediaURL  string       `json:"mediaUrl,omitempty"`
	CreatedAt       string       `json:"createdAt,omitempty"`
	UpdatedAt       string       `json:"updatedAt,omitempty"`
	PlantStage      *string      `json:"plantStage"`
	DetectedSpecies *string      `json:"detectedSpecies"`
	LatestData      *Measurement `json:"latestData,omitempty"`
}

// Analyzed reports whether the backend has produced a classification for
// this plant yet.
func (p Plant) Analyzed() bool {
	return p.PlantStage != nil || p.DetectedSpecies != nil
}

// Measurement is the latest sensor/analysis snapshot for a plant.
type Measurement struct {
	Height         *float64 `json:"height,omitempty"`
	LeafCount      *int     `json:"leafCount,omitempty"`
	HealthScore    *float64 `json:"healthScore,omitempty"`
	LastWatered    string   `json:"lastWatered,omitempty"`
	LastFertilized string   `json:"lastFertilized,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Humidity       *float64 `json:"humidity,omitempty"`
	LightLevel     *float64 `json:"lightLevel,omitempty"`
	SoilMoisture   *float64 `json:"soilMoisture,omitempty"`
}

// HistoryEntry is one immutable record of a past image upload and its
// analysis outcome.
type HistoryEntry struct {
	ImageID         string   `json:"imageId"`
	PlantID         string   `json:"plantId"`
	MediaTitle      string   `json:"mediaTitle,omitempty"`
	MediaURL        string   `json:"mediaUrl"`
	UploaderID      string   `json:"uploaderId"`
	UploaderName    string   `json:"uploaderName"`
	UploadDate      string   `json:"uploadDate"`
	PlantStage      *string  `json:"plantStage"`
	StageConfidence *float64 `json:"stageConfidence"`
	DetectedSpecies *string  `json:"detectedSpecies"`
}

// detailsResponse is the raw (unenveloped) shape of /plants/latest, with
// measurement fields flattened at the top level.
type detailsResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	PlantCoverURL   string   `json:"plantCoverUrl"`
	MediaURL        string   `json:"mediaUrl"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
	PlantStage      *string  `json:"plantStage"`
	DetectedSpecies *string  `json:"detectedSpecies"`
	Height          *float64 `json:"height"`
	LeafCount       *int     `json:"leafCount"`
	HealthScore     *float64 `json:"healthScore"`
	LastWatered     string   `json:"lastWatered"`
	LastFertilized  string   `json:"lastFertilized"`
	Temperature     *float64 `json:"temperature"`
	Humidity        *float64 `json:"humidity"`
	LightLevel      *float64 `json:"lightLevel"`
	SoilMoisture    *float64 `json:"soilMoisture"`
}

func (d detailsResponse) toPlant(requestedID string) Plant {
	p := Plant{
		ID:              d.ID,
		Name:            d.Name,
		CoverImageURL:   d.PlantCoverURL,
		LatestMediaURL:  d.MediaURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		PlantStage:      d.PlantStage,
		DetectedSpecies: d.DetectedSpecies,
		LatestData: &Measurement{
			Height:         d.Height,
			LeafCount:      d.LeafCount,
			HealthScore:    d.HealthScore,
			LastWatered:    d.LastWatered,
			LastFertilized: d.LastFertilized,
			Temperature:    d.Temperature,
			Humidity:       d.Humidity,
			LightLevel:     d.LightLevel,
			SoilMoisture:   d.SoilMoisture,
		},
	}
	if p.ID == "" {
		p.ID = requestedID
	}
	return p
}
