package recognition

// Endpoint names one remote recognition strategy.
type Endpoint string

const (
	EndpointSport     Endpoint = "sport_id"
	EndpointTCG       Endpoint = "tcg_id"
	EndpointComics    Endpoint = "comics_id"
	EndpointSlab      Endpoint = "slab_id"
	EndpointAnalyze   Endpoint = "analyze"
	EndpointDetect    Endpoint = "detect"
	EndpointProcess   Endpoint = "process"
	EndpointOCR       Endpoint = "card_ocr_id"
	EndpointGrade     Endpoint = "grade"
	EndpointCondition Endpoint = "condition"
	EndpointCentering Endpoint = "centering"
)

var endpointPaths = map[Endpoint]string{
	EndpointSport:     "/collectibles/v2/sport_id",
	EndpointTCG:       "/collectibles/v2/tcg_id",
	EndpointComics:    "/collectibles/v2/comics_id",
	EndpointSlab:      "/collectibles/v2/slab_id",
	EndpointAnalyze:   "/collectibles/v2/analyze",
	EndpointDetect:    "/collectibles/v2/detect",
	EndpointProcess:   "/collectibles/v2/process",
	EndpointOCR:       "/collectibles/v2/card_ocr_id",
	EndpointGrade:     "/card-grader/v2/grade",
	EndpointCondition: "/card-grader/v2/condition",
	EndpointCentering: "/card-grader/v2/centering",
}

// Path returns the URL path of the endpoint, or "" for unknown endpoints.
func (e Endpoint) Path() string {
	return endpointPaths[e]
}

// Valid reports whether e is one of the known endpoints.
func (e Endpoint) Valid() bool {
	_, ok := endpointPaths[e]
	return ok
}

// IsGrading reports whether e belongs to the card grader family.
func (e Endpoint) IsGrading() bool {
	return e == EndpointGrade || e == EndpointCondition || e == EndpointCentering
}

func (e Endpoint) String() string { return string(e) }
