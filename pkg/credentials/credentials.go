package credentials

import (
	"encoding/json"
)

const appName = "github.com/blaubaer/onair-indicator"

type Credentials struct {
	HueBridge string `json:"hue_bridge,omitempty"`
	HueUser   string `json:"hue_user,omitempty"`
}

func (this *Credentials) IsZero() bool {
	return this.HueBridge == "" && this.HueUser == ""
}

func (this *Credentials) MarshalBinary() (data []byte, err error) {
	return json.Marshal(this)
}

func (this *Credentials) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, this)
}
