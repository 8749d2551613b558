package jenkins

import "encoding/json"

// Job is a Jenkins job or folder as returned by /api/json. Consumed
// read-only; the portal never writes job state back.
type Job struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	FullName    string     `json:"fullName"`
	URL         string     `json:"url"`
	Jobs        []Job      `json:"jobs"`
	Builds      []BuildRef `json:"builds"`
	LastBuild   *BuildRef  `json:"lastBuild"`
	Actions     []Action   `json:"actions"`
}

// BuildRef is the shallow build reference embedded in a job listing.
type BuildRef struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// Build is a single executed build of a job.
type Build struct {
	Number          int      `json:"number"`
	URL             string   `json:"url"`
	DisplayName     string   `json:"displayName"`
	FullDisplayName string   `json:"fullDisplayName"`
	Building        bool     `json:"building"`
	Result          string   `json:"result"`
	Timestamp       int64    `json:"timestamp"`
	Actions         []Action `json:"actions"`
}

// Action is a generic metadata attachment on a job or build, tagged by the
// _class discriminator. The raw payload is retained so known kinds can be
// decoded after the fact; unknown discriminators are skipped entirely.
type Action struct {
	Class string
	Raw   json.RawMessage
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var head struct {
		Class string `json:"_class"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	a.Class = head.Class
	a.Raw = append(a.Raw[:0], data...)
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	return json.Marshal(struct {
		Class string `json:"_class"`
	}{Class: a.Class})
}
