package schema

import "encoding/json"

type TokenNotification struct {
	Purpose string
	Email   string
	Token   string
	BaseURL string
}

func (n *TokenNotification) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

func (n *TokenNotification) Unmarshal(data []byte) error {
	return json.Unmarshal(data, n)
}
