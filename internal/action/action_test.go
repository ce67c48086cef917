package action

import (
	"errors"
	"testing"

	"shoplist/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		payload string
		want    Action
		wantErr bool
	}{
		{payload: "summary", want: Global(KindSummary)},
		{payload: "preserve", want: Global(KindPreserve)},
		{payload: "clear_all", want: Global(KindClearAll)},
		{payload: "buy_abcdefgh", want: Item(KindBuy, "abcdefgh")},
		{payload: "comment_abcdefgh", want: Item(KindComment, "abcdefgh")},
		{payload: "delcom_abcdefgh", want: Item(KindDeleteComment, "abcdefgh")},
		{payload: "edit_abcdefgh", want: Item(KindEdit, "abcdefgh")},
		{payload: "delete_abcdefgh", want: Item(KindDelete, "abcdefgh")},
		// Unknown ids still parse; the router answers "not found".
		{payload: "buy_Milk", want: Item(KindBuy, "Milk")},
		{payload: "", wantErr: true},
		{payload: "buy_", wantErr: true},
		{payload: "_abcdefgh", wantErr: true},
		{payload: "summary_abcdefgh", wantErr: true},
		{payload: "frobnicate_abcdefgh", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := Parse(tt.payload)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPayload) {
					t.Fatalf("expected ErrMalformedPayload, got %v (%+v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.payload, err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestStringParse_RoundTripsEveryKind(t *testing.T) {
	id := model.ItemID("k7m2q4zz")
	for k := KindBuy; k <= KindClearAll; k++ {
		a := Action{Kind: k}
		if !k.Global() {
			a.ItemID = id
		}
		got, err := Parse(a.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", a.String(), err)
		}
		if got != a {
			t.Fatalf("round trip %q: got %+v, want %+v", a.String(), got, a)
		}
	}
}
