package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type phoneHolder struct {
	Phone string `validate:"ua_phone"`
}

func TestUAPhone(t *testing.T) {
	valid := []string{"+380501234567", "+3805012345678"}
	invalid := []string{"", "380501234567", "+38050123456", "+38050123456789", "+380-50-123-45-67"}

	for _, p := range valid {
		assert.NoError(t, Struct(phoneHolder{Phone: p}), p)
	}
	for _, p := range invalid {
		assert.Error(t, Struct(phoneHolder{Phone: p}), p)
	}
}

type rateHolder struct {
	Rate float64 `validate:"half_rate"`
}

func TestHalfRate(t *testing.T) {
	for _, r := range []float64{1, 1.5, 2, 3.5, 4, 5} {
		assert.NoError(t, Struct(rateHolder{Rate: r}), r)
	}
	for _, r := range []float64{0, 0.5, 5.5, 3.3, 4.25, -1} {
		assert.Error(t, Struct(rateHolder{Rate: r}), r)
	}
}

type priceHolder struct {
	Price string `validate:"price_range"`
}

func TestPriceRange(t *testing.T) {
	assert.NoError(t, Struct(priceHolder{Price: "0,1000"}))
	assert.NoError(t, Struct(priceHolder{Price: "150,300"}))

	for _, p := range []string{"", "100", "100,", ",500", "100-500", "100,500,900", "abc,def"} {
		assert.Error(t, Struct(priceHolder{Price: p}), p)
	}
}

type sizesHolder struct {
	Sizes string `validate:"size_csv"`
}

func TestSizeCSV(t *testing.T) {
	assert.NoError(t, Struct(sizesHolder{Sizes: "M"}))
	assert.NoError(t, Struct(sizesHolder{Sizes: "XXS,S,XL"}))

	for _, s := range []string{"", "m", "M,", ",M", "M S", "XXXL", "M,,L"} {
		assert.Error(t, Struct(sizesHolder{Sizes: s}), s)
	}
}

type messageHolder struct {
	Name  string `validate:"required"`
	Phone string `validate:"ua_phone"`
}

func TestMessageListsFailingFields(t *testing.T) {
	err := Struct(messageHolder{})
	assert.Error(t, err)

	msg := Message(err)
	assert.True(t, strings.HasPrefix(msg, "invalid value for: "))
	assert.Contains(t, msg, "Name")
	assert.Contains(t, msg, "Phone")
}

func TestMessageWithForeignError(t *testing.T) {
	assert.Equal(t, "invalid request", Message(assert.AnError))
}
