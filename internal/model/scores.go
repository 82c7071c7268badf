package model

// RubricScores holds the six evaluation dimensions, each scored 1-10.
type RubricScores struct {
	Relevance        float64 `json:"relevance"`
	LogicalStructure float64 `json:"logical_structure"`
	Clarity          float64 `json:"clarity"`
	Depth            float64 `json:"depth"`
	Objectivity      float64 `json:"objectivity"`
	Creativity       float64 `json:"creativity"`
}

// Mean is the overall score of one evaluation pass.
func (r RubricScores) Mean() float64 {
	return (r.Relevance + r.LogicalStructure + r.Clarity + r.Depth + r.Objectivity + r.Creativity) / 6.0
}

// Min returns the lowest dimension score.
func (r RubricScores) Min() float64 {
	min := r.Relevance
	for _, v := range []float64{r.LogicalStructure, r.Clarity, r.Depth, r.Objectivity, r.Creativity} {
		if v < min {
			min = v
		}
	}
	return min
}

// ArgumentNode is a premise or conclusion extracted from the user's argument.
type ArgumentNode struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "premise" or "conclusion"
	Text string `json:"text"`
}

// ArgumentEdge connects a supporting node to the node it supports.
type ArgumentEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"` // "support"
}

type ArgumentGraph struct {
	Nodes []ArgumentNode `json:"nodes"`
	Edges []ArgumentEdge `json:"edges"`
}
