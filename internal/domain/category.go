package domain

type Category struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

func (Category) CollectionName() string {
	return "categories"
}
