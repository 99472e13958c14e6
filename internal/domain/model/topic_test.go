package model_test

import (
	"testing"

	model "github.com/okian/ranker/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestBounds(t *testing.T) {
	convey.Convey("Given importance and score values", t, func() {
		convey.Convey("Then importance is valid only within 1..5", func() {
			convey.So(model.Importance(0).Valid(), convey.ShouldBeFalse)
			convey.So(model.MinImportance.Valid(), convey.ShouldBeTrue)
			convey.So(model.DefaultImportance.Valid(), convey.ShouldBeTrue)
			convey.So(model.MaxImportance.Valid(), convey.ShouldBeTrue)
			convey.So(model.Importance(6).Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("And score is valid only within 1..10", func() {
			convey.So(model.Score(0).Valid(), convey.ShouldBeFalse)
			convey.So(model.MinScore.Valid(), convey.ShouldBeTrue)
			convey.So(model.MaxScore.Valid(), convey.ShouldBeTrue)
			convey.So(model.Score(11).Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestNewID(t *testing.T) {
	convey.Convey("Given freshly minted ids", t, func() {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			seen[model.NewID()] = true
		}

		convey.Convey("Then they are never reused", func() {
			convey.So(seen, convey.ShouldHaveLength, 100)
		})
	})
}

func TestSubject(t *testing.T) {
	convey.Convey("Given a subject and two attributes", t, func() {
		attrs := []model.Attribute{{ID: "price"}, {ID: "size"}}
		s := model.Subject{ID: "a", Name: "A", Scores: map[string]model.Score{"price": 8}}

		convey.Convey("When a score is missing", func() {
			convey.Convey("Then the subject is not complete", func() {
				convey.So(s.Complete(attrs), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When every attribute is scored", func() {
			s.Scores["size"] = 2

			convey.Convey("Then the subject is complete", func() {
				convey.So(s.Complete(attrs), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When cloning", func() {
			c := s.Clone()
			c.Scores["price"] = 1

			convey.Convey("Then the copy does not alias the scores", func() {
				convey.So(s.Scores["price"], convey.ShouldEqual, model.Score(8))
			})
		})

		convey.Convey("When cloning a subject without scores", func() {
			c := model.Subject{ID: "b"}.Clone()

			convey.Convey("Then the copy has an empty, writable map", func() {
				convey.So(c.Scores, convey.ShouldNotBeNil)
				convey.So(c.Scores, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestTopic(t *testing.T) {
	convey.Convey("Given a topic", t, func() {
		topic := model.Topic{
			ID:         "t",
			Name:       "Laptop",
			Attributes: []model.Attribute{{ID: "price", Name: "Price", Importance: 5}},
			Subjects: []model.Subject{
				{ID: "a", Name: "A", Scores: map[string]model.Score{"price": 8}},
				{ID: "b", Name: "B", Scores: map[string]model.Score{"price": 5}},
			},
		}

		convey.Convey("When looking up subjects", func() {
			convey.Convey("Then positions follow insertion order", func() {
				convey.So(topic.SubjectIndex("a"), convey.ShouldEqual, 0)
				convey.So(topic.SubjectIndex("b"), convey.ShouldEqual, 1)
				convey.So(topic.SubjectIndex("missing"), convey.ShouldEqual, -1)
			})
		})

		convey.Convey("When looking up attributes", func() {
			a, ok := topic.Attribute("price")
			_, missing := topic.Attribute("size")

			convey.Convey("Then only defined ids are found", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(a.Name, convey.ShouldEqual, "Price")
				convey.So(missing, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When cloning", func() {
			c := topic.Clone()
			c.Attributes[0].Importance = 1
			c.Subjects[0].Scores["price"] = 1
			c.Subjects = append(c.Subjects, model.Subject{ID: "c"})

			convey.Convey("Then the original is untouched", func() {
				convey.So(topic.Attributes[0].Importance, convey.ShouldEqual, model.Importance(5))
				convey.So(topic.Subjects[0].Scores["price"], convey.ShouldEqual, model.Score(8))
				convey.So(topic.Subjects, convey.ShouldHaveLength, 2)
			})
		})
	})
}
