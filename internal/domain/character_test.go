package domain

import (
	"encoding/json"
	"testing"
)

func TestCharacterUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantClass ClassID
	}{
		{
			name:      "完整对象",
			input:     `{"name":"小剑","class":"gladiator"}`,
			wantName:  "小剑",
			wantClass: ClassGladiator,
		},
		{
			name:      "旧数据裸字符串",
			input:     `"老角色"`,
			wantName:  "老角色",
			wantClass: ClassUnknown,
		},
		{
			name:      "对象但职业为空",
			input:     `{"name":"小剑","class":""}`,
			wantName:  "小剑",
			wantClass: ClassUnknown,
		},
		{
			name:      "对象缺少职业字段",
			input:     `{"name":"小剑"}`,
			wantName:  "小剑",
			wantClass: ClassUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var char Character
			if err := json.Unmarshal([]byte(tt.input), &char); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if char.Name != tt.wantName || char.Class != tt.wantClass {
				t.Errorf("Unmarshal() = %+v, 期望 (%s, %s)", char, tt.wantName, tt.wantClass)
			}
		})
	}
}

func TestCharacterUnmarshalJSONMixedList(t *testing.T) {
	// 旧用户的角色库中可能新旧格式混杂
	input := `["老角色",{"name":"小剑","class":"cleric"}]`

	var chars []Character
	if err := json.Unmarshal([]byte(input), &chars); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(chars) != 2 {
		t.Fatalf("角色数量 = %d, 期望 2", len(chars))
	}
	if chars[0].Name != "老角色" || chars[0].Class != ClassUnknown {
		t.Errorf("chars[0] = %+v", chars[0])
	}
	if chars[1].Name != "小剑" || chars[1].Class != ClassCleric {
		t.Errorf("chars[1] = %+v", chars[1])
	}
}

func TestClassID(t *testing.T) {
	if !ClassGladiator.IsValid() {
		t.Error("gladiator 应为合法职业")
	}
	if ClassUnknown.IsValid() {
		t.Error("unknown 不应被当作可选职业")
	}
	if ClassID("bard").IsValid() {
		t.Error("bard 不应为合法职业")
	}

	if got := ClassGladiator.DisplayName(); got != "劍星" {
		t.Errorf("DisplayName() = %s, 期望 劍星", got)
	}
	if got := ClassUnknown.DisplayName(); got != "未知職業" {
		t.Errorf("DisplayName() = %s, 期望 未知職業", got)
	}
}
