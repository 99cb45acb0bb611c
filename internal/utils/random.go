package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateNicknameFromChineseName 用拼音加随机数字生成一个游戏昵称
func GenerateNicknameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	nickname := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		nickname += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		nickname += string(digits[rand.Intn(len(digits))])
	}

	return nickname
}

func GenerateRandomPIN() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}

func GenerateRandomUser(pin string) (*domain.User, error) {
	nickname := GenerateNicknameFromChineseName(GenerateRandomChineseName())

	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:       nickname,
		PINHash:    string(pinHash),
		Role:       domain.RoleUser,
		Characters: GenerateRandomCharacters(rand.Intn(4) + 1),
	}

	return user, nil
}

var classes = []domain.ClassID{
	domain.ClassGladiator,
	domain.ClassTemplar,
	domain.ClassAssassin,
	domain.ClassRanger,
	domain.ClassSorcerer,
	domain.ClassSpiritmaster,
	domain.ClassCleric,
	domain.ClassChanter,
}

func GenerateRandomCharacters(n int) []domain.Character {
	characters := make([]domain.Character, n)
	for i := range characters {
		characters[i] = domain.Character{
			Name:  GenerateNicknameFromChineseName(GenerateRandomChineseName()),
			Class: classes[rand.Intn(len(classes))],
		}
	}
	return characters
}

// GenerateRandomParty 生成一个全空的组队，出团时间在未来一周内
func GenerateRandomParty(creator *domain.User) *domain.Party {
	scheduledTime := time.Now().
		Add(time.Duration(rand.Intn(7*24)) * time.Hour).
		Format("2006-01-02T15:04")

	party := &domain.Party{
		CreatorID:     creator.ID,
		CreatorName:   creator.Name,
		ScheduledTime: scheduledTime,
		EstimatedRuns: fmt.Sprintf("%d", rand.Intn(8)+1),
		Status:        domain.PartyStatusOpen,
		IsTwoTeams:    rand.Intn(2) == 0,
		Team1:         domain.NewTeam(),
	}
	if party.IsTwoTeams {
		party.Team2 = domain.NewTeam()
	}

	return party
}
