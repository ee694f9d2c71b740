package clients

type Repo interface {
	Upsert(client *Client) error
	Delete(clientID string) error
	Get(clientID string) (*Client, error)
	List() ([]*Client, error)
}
