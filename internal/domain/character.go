package domain

import "encoding/json"

type ClassID string

const (
	ClassGladiator    ClassID = "gladiator"
	ClassTemplar      ClassID = "templar"
	ClassAssassin     ClassID = "assassin"
	ClassRanger       ClassID = "ranger"
	ClassSorcerer     ClassID = "sorcerer"
	ClassSpiritmaster ClassID = "spiritmaster"
	ClassCleric       ClassID = "cleric"
	ClassChanter      ClassID = "chanter"

	// 旧数据中的角色只有名字没有职业，统一归为未知职业
	ClassUnknown ClassID = "unknown"
)

var classNames = map[ClassID]string{
	ClassGladiator:    "劍星",
	ClassTemplar:      "守護星",
	ClassAssassin:     "殺星",
	ClassRanger:       "弓星",
	ClassSorcerer:     "魔導星",
	ClassSpiritmaster: "精靈星",
	ClassCleric:       "治癒星",
	ClassChanter:      "護法星",
}

func (c ClassID) IsValid() bool {
	_, exists := classNames[c]
	return exists
}

// DisplayName 返回职业的显示名称，未知职业返回「未知職業」
func (c ClassID) DisplayName() string {
	if name, exists := classNames[c]; exists {
		return name
	}
	return "未知職業"
}

type Character struct {
	Name  string  `json:"name"`
	Class ClassID `json:"class"`
}

// UnmarshalJSON 兼容旧数据格式：旧数据中的角色是一个裸字符串，
// 此时将其职业归为未知职业，使得内部逻辑不需要再区分新旧格式
func (c *Character) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		c.Class = ClassUnknown
		return nil
	}

	var obj struct {
		Name  string  `json:"name"`
		Class ClassID `json:"class"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	c.Name = obj.Name
	c.Class = obj.Class
	if c.Class == "" {
		c.Class = ClassUnknown
	}

	return nil
}
