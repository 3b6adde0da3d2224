package entitystore

// listing is the union of the collection payloads served by the data store:
// {routes:[...]}, {carriers:[...]} and {vehicles:[...]}.
type listing struct {
	Routes   []namedEntity `json:"routes"`
	Carriers []namedEntity `json:"carriers"`
	Vehicles []vehicle     `json:"vehicles"`
}

type namedEntity struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

type vehicle struct {
	ID          any     `json:"id"`
	PlateNumber string  `json:"plate_number"`
	Capacity    float64 `json:"capacity"`
	Type        string  `json:"type"`
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, name(item))
	}
	return out
}
