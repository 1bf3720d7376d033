package db

// SchemaSQL contains the database schema initialization SQL.
// JSON-shaped payloads are stored as strings so numeric types survive the
// round trip unchanged.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS session SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON session TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS last_activity ON session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS preferences ON session TYPE option<string>;
    DEFINE INDEX IF NOT EXISTS session_user ON session FIELDS user_id;

    DEFINE TABLE IF NOT EXISTS chat_message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS message_id ON chat_message TYPE string;
    DEFINE FIELD IF NOT EXISTS session_id ON chat_message TYPE string;
    DEFINE FIELD IF NOT EXISTS user_id ON chat_message TYPE string;
    DEFINE FIELD IF NOT EXISTS message ON chat_message TYPE string;
    DEFINE FIELD IF NOT EXISTS message_type ON chat_message TYPE string;
    DEFINE FIELD IF NOT EXISTS timestamp ON chat_message TYPE datetime;
    DEFINE INDEX IF NOT EXISTS chat_message_session ON chat_message FIELDS session_id, timestamp;

    DEFINE TABLE IF NOT EXISTS saved_property SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON saved_property TYPE string;
    DEFINE FIELD IF NOT EXISTS property_id ON saved_property TYPE string;
    DEFINE FIELD IF NOT EXISTS notes ON saved_property TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS saved_at ON saved_property TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS saved_property_user ON saved_property FIELDS user_id;

    DEFINE TABLE IF NOT EXISTS property_detail SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS property_id ON property_detail TYPE string;
    DEFINE FIELD IF NOT EXISTS payload ON property_detail TYPE string;
    DEFINE FIELD IF NOT EXISTS updated_at ON property_detail TYPE datetime DEFAULT time::now();

    DEFINE TABLE IF NOT EXISTS interaction SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS interaction_id ON interaction TYPE string;
    DEFINE FIELD IF NOT EXISTS user_id ON interaction TYPE string;
    DEFINE FIELD IF NOT EXISTS kind ON interaction TYPE string;
    DEFINE FIELD IF NOT EXISTS payload ON interaction TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS timestamp ON interaction TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS interaction_user ON interaction FIELDS user_id, timestamp;
`
