package bank

import (
	"reflect"
	"testing"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []map[string]string
	}{
		{
			name: "simple",
			in:   "id,question\n1,止まれ\n2,進め\n",
			want: []map[string]string{
				{"id": "1", "question": "止まれ"},
				{"id": "2", "question": "進め"},
			},
		},
		{
			name: "quoted comma and doubled quote",
			in:   "id,question\n1,\"右折、左折の際は\"\"合図\"\"を出す\"\n",
			want: []map[string]string{
				{"id": "1", "question": "右折、左折の際は\"合図\"を出す"},
			},
		},
		{
			name: "quoted field with ascii comma",
			in:   "id,answer,explain\n1,false,\"a, b\"\n",
			want: []map[string]string{
				{"id": "1", "answer": "false", "explain": "a, b"},
			},
		},
		{
			name: "short row padded",
			in:   "id,answer,explain\n1,true\n",
			want: []map[string]string{
				{"id": "1", "answer": "true", "explain": ""},
			},
		},
		{
			name: "extra values ignored",
			in:   "id,question\n1,a,b,c\n",
			want: []map[string]string{
				{"id": "1", "question": "a"},
			},
		},
		{
			name: "blank lines skipped",
			in:   "id,question\n\n1,a\n  \n\n2,b",
			want: []map[string]string{
				{"id": "1", "question": "a"},
				{"id": "2", "question": "b"},
			},
		},
		{
			name: "crlf and bom",
			in:   "\xEF\xBB\xBFid,question\r\n1,a\r\n",
			want: []map[string]string{
				{"id": "1", "question": "a"},
			},
		},
		{
			name: "header only",
			in:   "id,question\n",
			want: nil,
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTable([]byte(tt.in))
			if err != nil {
				t.Fatalf("parseTable: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTableUnterminatedQuote(t *testing.T) {
	_, err := parseTable([]byte("id,question\n1,\"never closed\n"))
	if err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}
