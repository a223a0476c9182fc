package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstants(t *testing.T) {
	assert.Equal(t, "setName", MsgSetName)
	assert.Equal(t, "input", MsgInput)
	assert.Equal(t, "retry", MsgRetry)
	assert.Equal(t, "signal", MsgSignal)
	assert.Equal(t, "requestName", MsgRequestName)
	assert.Equal(t, "welcome", MsgWelcome)
	assert.Equal(t, "state", MsgState)
}

func TestDecodeInbound(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Inbound
	}{
		{"set name", `{"type":"setName","name":"alice"}`, SetName{Name: "alice"}},
		{"input", `{"type":"input","dir":"LEFT"}`, InputMessage{Dir: DirLeft}},
		{"retry", `{"type":"retry"}`, Retry{}},
		{"retry with junk", `{"type":"retry","extra":1}`, Retry{}},
		{
			"signal",
			`{"type":"signal","target":"abc","data":{"type":"sdp","sdp":{"type":"offer"}}}`,
			Signal{Target: "abc", Data: json.RawMessage(`{"type":"sdp","sdp":{"type":"offer"}}`)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeInboundRejects(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", ``, ErrEmptyMessage},
		{"unknown type", `{"type":"teleport"}`, ErrUnknownType},
		{"missing type", `{"name":"x"}`, ErrUnknownType},
		{"stop is not an input", `{"type":"input","dir":"STOP"}`, ErrBadDirection},
		{"missing dir", `{"type":"input"}`, ErrBadDirection},
		{"diagonal", `{"type":"input","dir":"UPLEFT"}`, ErrBadDirection},
		{"lower case", `{"type":"input","dir":"up"}`, ErrBadDirection},
		{"mixed case", `{"type":"input","dir":"Right"}`, ErrBadDirection},
		{"not json", `hello`, nil},
		{"name not a string", `{"type":"setName","name":42}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeInbound([]byte(tc.raw))
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestEncodeStateShape(t *testing.T) {
	w := newTestWorld(t, 1)
	a := join(t, w, "S1", "A")
	b2 := join(t, w, "S2", "B")
	join(t, w, "S3", "C")
	place(a, 10, 10, DirRight, Point{9, 10})
	place(b2, 40, 20, DirStop)
	w.Fruit = Point{X: 30, Y: 15}
	w.Step()

	b, err := EncodeState(w.Snapshot())
	require.NoError(t, err)

	var msg struct {
		Type  string `json:"type"`
		State struct {
			Width   int `json:"width"`
			Height  int `json:"height"`
			Players map[string]struct {
				ID    int              `json:"id"`
				Name  string           `json:"name"`
				X     int              `json:"x"`
				Y     int              `json:"y"`
				Dir   string           `json:"dir"`
				Tail  []map[string]int `json:"tail"`
				Alive bool             `json:"alive"`
				Score int              `json:"score"`
			} `json:"players"`
			Leaderboard []map[string]any `json:"leaderboard"`
			Fruit       map[string]int   `json:"fruit"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(b, &msg))

	assert.Equal(t, MsgState, msg.Type)
	assert.Equal(t, WorldWidth, msg.State.Width)
	assert.Equal(t, WorldHeight, msg.State.Height)
	require.Len(t, msg.State.Players, 3)
	s1 := msg.State.Players["S1"]
	assert.Equal(t, 1, s1.ID)
	assert.Equal(t, "RIGHT", s1.Dir)
	assert.Equal(t, 11, s1.X)
	assert.Equal(t, []map[string]int{{"x": 10, "y": 10}}, s1.Tail)
	assert.Equal(t, "STOP", msg.State.Players["S3"].Dir)
	assert.Len(t, msg.State.Leaderboard, 2)
	assert.Equal(t, map[string]int{"x": 30, "y": 15}, msg.State.Fruit)

	// 空尾巴序列化为 [] 而不是 null
	var raw struct {
		State struct {
			Players map[string]map[string]json.RawMessage `json:"players"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.JSONEq(t, `[]`, string(raw.State.Players["S3"]["tail"]))
}

func TestEncodeWelcomeAndSignal(t *testing.T) {
	p := &Player{ID: SlotOne, Name: "A", X: 7, Y: 8, Tail: []Point{}, Alive: true}
	b, err := EncodeWelcome("sid-1", p)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"welcome","sid":"sid-1","player":{"id":1,"name":"A","x":7,"y":8,"dir":"STOP","tail":[],"alive":true,"score":0}}`,
		string(b))

	_, err = EncodeWelcome("sid-1", nil)
	assert.Error(t, err)

	b, err = EncodeSignal("from-1", json.RawMessage(`{"type":"ice","candidate":"c"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"signal","from":"from-1","data":{"type":"ice","candidate":"c"}}`, string(b))

	b, err = EncodeSignal("from-1", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"signal","from":"from-1","data":null}`, string(b))

	b, err = EncodeRequestName()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"requestName"}`, string(b))
}

func TestDirectionText(t *testing.T) {
	for _, d := range []Direction{DirStop, DirUp, DirDown, DirLeft, DirRight} {
		b, err := d.MarshalText()
		require.NoError(t, err)
		var back Direction
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, d, back)
	}
	_, err := Direction(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Direction(42)", Direction(42).String())
}
